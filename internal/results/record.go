// Package results persists pipeline results as opaque JSON payloads keyed by
// document id. A document has at most one result and the last write wins.
package results

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is the stored pipeline result for a document.
type Record struct {
	DocumentID uuid.UUID       `json:"document_id"`
	Backend    string          `json:"backend"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SaveCommand carries a serialized pipeline result for a document.
type SaveCommand struct {
	DocumentID uuid.UUID
	Backend    string
	Payload    json.RawMessage
}
