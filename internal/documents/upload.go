package documents

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Supported upload content types.
const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

// CommandFromRequest builds a CreateCommand from the "file" part of a parsed
// multipart form. Text files must be UTF-8 and become the document text.
// PDF uploads carry their extracted text in the "text" form field; the page
// count is read from the PDF itself.
func CommandFromRequest(r *http.Request, logger *slog.Logger) (CreateCommand, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return CreateCommand{}, ErrInvalidFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return CreateCommand{}, ErrInvalidFile
	}

	return NewCreateCommand(header.Filename, data, r.FormValue("text"), logger)
}

// NewCreateCommand extracts the document text from data according to the
// filename extension. pdfText is only consulted for PDF files.
func NewCreateCommand(filename string, data []byte, pdfText string, logger *slog.Logger) (CreateCommand, error) {
	cmd := CreateCommand{
		Data:     data,
		Filename: filename,
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		if !utf8.Valid(data) {
			return CreateCommand{}, ErrInvalidText
		}
		cmd.ContentType = ContentTypeText
		cmd.Text = string(data)
	case ".pdf":
		text := strings.TrimSpace(pdfText)
		if text == "" {
			return CreateCommand{}, ErrTextRequired
		}
		cmd.ContentType = ContentTypePDF
		cmd.Text = text
		cmd.PageCount = extractPDFPageCount(logger, data)
	default:
		return CreateCommand{}, ErrUnsupportedType
	}

	return cmd, nil
}

func extractPDFPageCount(logger *slog.Logger, data []byte) *int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
