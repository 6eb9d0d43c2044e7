package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/documents"
	"github.com/JaimeStill/meddoc/pkg/handlers"
	"github.com/JaimeStill/meddoc/pkg/routes"
)

// Handler provides HTTP endpoints for document ingestion, pipeline runs,
// and the individual pipeline stages.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// ProcessRequest is the optional body of a pipeline re-run.
type ProcessRequest struct {
	DocumentTypeHint string `json:"document_type_hint"`
}

// StageRequest is the body of the stateless stage endpoints.
// DocumentType defaults to CLINICAL NOTE when empty.
type StageRequest struct {
	DocumentText string                `json:"document_text"`
	DocumentType string                `json:"document_type,omitempty"`
	Codes        []backend.CodeFinding `json:"codes,omitempty"`
}

// RunRequest is the body of the stateless full-pipeline endpoint.
type RunRequest struct {
	DocumentText     string `json:"document_text"`
	DocumentTypeHint string `json:"document_type_hint,omitempty"`
}

// ValidationResponse reports whether text looks like a medical document.
type ValidationResponse struct {
	IsMedical bool `json:"is_medical"`
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "pipeline"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the document upload route and the pipeline route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/documents",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: h.Upload},
				},
			},
			{
				Prefix: "/pipeline",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/run", Handler: h.Run},
					{Method: "POST", Pattern: "/classify", Handler: h.Classify},
					{Method: "POST", Pattern: "/codes", Handler: h.ExtractCodes},
					{Method: "POST", Pattern: "/summarize", Handler: h.Summarize},
					{Method: "POST", Pattern: "/validate", Handler: h.Validate},
					{Method: "POST", Pattern: "/{id}", Handler: h.Process},
				},
			},
		},
	}
}

// Upload stores a multipart file upload and, unless run_pipeline is false,
// runs the pipeline over it. An optional document_type_hint skips classification.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, documents.ErrFileTooLarge)
		return
	}

	run, err := parseRunFlag(r.FormValue("run_pipeline"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	doc, err := documents.CommandFromRequest(r, h.logger)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}

	ingestion, err := h.sys.Ingest(r.Context(), IngestCommand{
		Document: doc,
		Run:      run,
		Hint:     r.FormValue("document_type_hint"),
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, ingestion)
}

// Process re-runs the pipeline for a stored document identified by the id path parameter.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var req ProcessRequest
	if err := decodeOptional(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Process(r.Context(), id, req.DocumentTypeHint)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Run executes the full pipeline over posted text without storing anything.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.DocumentText) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.Run(r.Context(), req.DocumentText, req.DocumentTypeHint)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Classify runs the classification stage alone.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.stageRequest(w, r)
	if !ok {
		return
	}

	c, err := h.sys.Backend().Classify(r.Context(), req.DocumentText)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// ExtractCodes runs the code extraction stage alone.
func (h *Handler) ExtractCodes(w http.ResponseWriter, r *http.Request) {
	req, docType, ok := h.stageRequest(w, r)
	if !ok {
		return
	}

	codes, err := h.sys.Backend().ExtractCodes(r.Context(), req.DocumentText, docType)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, codes)
}

// Summarize runs the summarization stage alone over the supplied codes.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	req, docType, ok := h.stageRequest(w, r)
	if !ok {
		return
	}

	codes := req.Codes
	if codes == nil {
		codes = []backend.CodeFinding{}
	}

	s, err := h.sys.Backend().Summarize(r.Context(), req.DocumentText, docType, codes)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	s.Confidence = summaryConfidence(s, len(codes) > 0)

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Validate reports whether the posted text looks like a medical document.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.stageRequest(w, r)
	if !ok {
		return
	}

	valid, err := h.sys.Backend().ValidateMedicalDocument(r.Context(), req.DocumentText)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ValidationResponse{IsMedical: valid})
}

func (h *Handler) stageRequest(w http.ResponseWriter, r *http.Request) (StageRequest, backend.DocumentType, bool) {
	var req StageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.DocumentText) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return req, "", false
	}

	docType := backend.ClinicalNote
	if strings.TrimSpace(req.DocumentType) != "" {
		t, err := backend.ParseDocumentType(req.DocumentType)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return req, "", false
		}
		docType = t
	}

	return req, docType, true
}

func parseRunFlag(v string) (bool, error) {
	if strings.TrimSpace(v) == "" {
		return true, nil
	}
	return strconv.ParseBool(strings.TrimSpace(v))
}

func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return ErrInvalidRequest
	}
	return nil
}
