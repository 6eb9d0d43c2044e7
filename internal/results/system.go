package results

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for result persistence.
type System interface {
	Handler() *Handler

	// Save upserts the result for a document and marks the document processed
	// in the same transaction. Returns ErrNotFound when the document does not exist.
	Save(ctx context.Context, cmd SaveCommand) (*Record, error)
	// Find returns the result for a document or ErrNotFound.
	Find(ctx context.Context, documentID uuid.UUID) (*Record, error)
	// Delete removes the result for a document and returns the document to pending.
	Delete(ctx context.Context, documentID uuid.UUID) error
}
