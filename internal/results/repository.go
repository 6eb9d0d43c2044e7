package results

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/pkg/query"
	"github.com/JaimeStill/meddoc/pkg/repository"
)

const upsertResult = `
		INSERT INTO document_results(document_id, backend, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id) DO UPDATE
		SET backend = EXCLUDED.backend, payload = EXCLUDED.payload, updated_at = NOW()
		RETURNING document_id, backend, payload, created_at, updated_at`

const markProcessed = `
		UPDATE documents SET status = 'processed', updated_at = NOW()
		WHERE id = $1`

const markPending = `
		UPDATE documents SET status = 'pending', updated_at = NOW()
		WHERE id = $1`

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a result repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "results"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Save(ctx context.Context, cmd SaveCommand) (*Record, error) {
	if !isObject(cmd.Payload) {
		return nil, ErrInvalidPayload
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		if err := repository.ExecExpectOne(ctx, tx, markProcessed, cmd.DocumentID); err != nil {
			return Record{}, err
		}

		args := []any{cmd.DocumentID, cmd.Backend, []byte(cmd.Payload)}
		return repository.QueryOne(ctx, tx, upsertResult, args, scanRecord)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("result saved", "document_id", rec.DocumentID, "backend", rec.Backend)
	return &rec, nil
}

func (r *repo) Find(ctx context.Context, documentID uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("DocumentID", documentID)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Delete(ctx context.Context, documentID uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM document_results WHERE document_id = $1",
			documentID,
		); err != nil {
			return struct{}{}, err
		}

		_, err := tx.ExecContext(ctx, markPending, documentID)
		return struct{}{}, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("result deleted", "document_id", documentID)
	return nil
}

func isObject(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
