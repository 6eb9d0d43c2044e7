package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/documents"
)

// Domain errors for pipeline operations.
var (
	ErrValidationRejected = errors.New("this does not appear to be a medical document; upload a lab report, imaging report, or clinical note")
	ErrInvalidHint        = errors.New("invalid document_type_hint")
	ErrPipelineFailed     = errors.New("pipeline failed")
	ErrInvalidRequest     = errors.New("invalid pipeline request")
)

// StageError reports the stage at which a pipeline run failed. When
// DocumentID is set the document was stored before the failure.
type StageError struct {
	DocumentID uuid.UUID
	Stage      Stage
	Err        error
}

func (e *StageError) Error() string {
	if e.DocumentID == uuid.Nil {
		return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("Document saved but pipeline failed: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches ErrPipelineFailed so callers can detect any stage failure.
func (e *StageError) Is(target error) bool {
	return target == ErrPipelineFailed
}

// MapHTTPStatus maps pipeline errors to HTTP status codes. Stage failures on
// a stored document are server errors; an unavailable backend on a stateless
// stage call is a bad gateway.
func MapHTTPStatus(err error) int {
	var stageErr *StageError

	switch {
	case errors.Is(err, ErrValidationRejected),
		errors.Is(err, ErrInvalidHint),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, backend.ErrInvalidDocumentType):
		return http.StatusBadRequest
	case errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &stageErr) && stageErr.DocumentID != uuid.Nil:
		return http.StatusInternalServerError
	case errors.Is(err, backend.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return documents.MapHTTPStatus(err)
	}
}
