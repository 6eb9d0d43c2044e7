package results

import (
	"github.com/JaimeStill/meddoc/pkg/query"
	"github.com/JaimeStill/meddoc/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "document_results", "r").
	Project("document_id", "DocumentID").
	Project("backend", "Backend").
	Project("payload", "Payload").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	var payload []byte

	err := s.Scan(
		&r.DocumentID,
		&r.Backend,
		&payload,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}

	r.Payload = payload
	return r, nil
}
