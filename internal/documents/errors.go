package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("document already exists")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
	ErrUnsupportedType = errors.New("unsupported file type; upload a .txt or .pdf file")
	ErrInvalidText     = errors.New("failed to decode text file; ensure the file is UTF-8 encoded")
	ErrTextRequired    = errors.New("pdf uploads require the extracted text form field")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile),
		errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrInvalidText),
		errors.Is(err, ErrTextRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
