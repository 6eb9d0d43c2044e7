package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/internal/results"
	"github.com/JaimeStill/meddoc/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler(res results.System) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
