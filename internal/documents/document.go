// Package documents implements the medical document domain.
// It stores uploaded files in blob storage and registers their metadata
// and extracted text in Postgres.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
)

// Document represents an uploaded medical document with its extracted text
// and blob storage reference. Only Status changes after creation.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count"`
	StorageKey  string    `json:"storage_key"`
	Text        string    `json:"text"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new document.
// Data holds the raw file bytes and Text the extracted document text.
// PageCount is only set for PDF uploads; nil values are stored as NULL.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Text        string
	PageCount   *int
}
