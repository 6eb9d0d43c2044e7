// Package pipeline orchestrates document analysis: medical-document
// validation, classification (or a caller-supplied type), code extraction,
// and summarization, followed by persistence of the combined result.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/internal/backend"
)

// System defines the public contract for pipeline operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Backend returns the backend the pipeline runs against.
	Backend() backend.Backend

	// Run analyzes text without persisting anything. A non-empty hint must
	// name a known document type and replaces classification.
	Run(ctx context.Context, text, hint string) (*Result, error)
	// Process runs the pipeline over a stored document and persists the result.
	Process(ctx context.Context, documentID uuid.UUID, hint string) (*Result, error)
	// Ingest stores an uploaded document and optionally processes it.
	Ingest(ctx context.Context, cmd IngestCommand) (*Ingestion, error)
}
