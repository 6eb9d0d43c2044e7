package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/documents"
	"github.com/JaimeStill/meddoc/internal/results"
	"github.com/JaimeStill/meddoc/pkg/formatting"
)

// Summary confidence used when the backend reports none.
const (
	summaryConfidenceWithCodes    = 0.75
	summaryConfidenceWithoutCodes = 0.5
)

type pipeline struct {
	backend   backend.Backend
	documents documents.System
	results   results.System
	metrics   *Metrics
	logger    *slog.Logger
}

// New creates a pipeline over the given backend and stores. metrics may be nil.
func New(
	be backend.Backend,
	docs documents.System,
	res results.System,
	metrics *Metrics,
	logger *slog.Logger,
) System {
	return &pipeline{
		backend:   be,
		documents: docs,
		results:   res,
		metrics:   metrics,
		logger:    logger.With("system", "pipeline", "backend", be.Mode()),
	}
}

func (p *pipeline) Handler(maxUploadSize int64) *Handler {
	return NewHandler(p, p.logger, maxUploadSize)
}

func (p *pipeline) Backend() backend.Backend {
	return p.backend
}

func (p *pipeline) Run(ctx context.Context, text, hint string) (*Result, error) {
	docType, err := p.admit(ctx, text, hint)
	if err != nil {
		p.metrics.recordOutcome(OutcomeRejected)
		return nil, err
	}

	result, err := p.analyze(ctx, text, docType)
	if err != nil {
		p.metrics.recordOutcome(OutcomeFailed)
		return nil, err
	}

	p.metrics.recordOutcome(OutcomeCompleted)
	return result, nil
}

func (p *pipeline) Process(ctx context.Context, documentID uuid.UUID, hint string) (*Result, error) {
	doc, err := p.documents.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	docType, err := p.admit(ctx, doc.Text, hint)
	if err != nil {
		p.metrics.recordOutcome(OutcomeRejected)
		return nil, err
	}

	return p.complete(ctx, doc.ID, doc.Text, docType)
}

func (p *pipeline) Ingest(ctx context.Context, cmd IngestCommand) (*Ingestion, error) {
	var docType backend.DocumentType

	if cmd.Run {
		t, err := p.admit(ctx, cmd.Document.Text, cmd.Hint)
		if err != nil {
			p.metrics.recordOutcome(OutcomeRejected)
			return nil, err
		}
		docType = t
	}

	doc, err := p.documents.Create(ctx, cmd.Document)
	if err != nil {
		return nil, err
	}

	ingestion := &Ingestion{Document: doc, Processed: cmd.Run}
	if !cmd.Run {
		return ingestion, nil
	}

	result, err := p.complete(ctx, doc.ID, doc.Text, docType)
	if err != nil {
		return nil, err
	}

	doc.Status = documents.StatusProcessed
	ingestion.Result = result
	return ingestion, nil
}

// admit validates the text and resolves the hint. The returned type is empty
// when classification must run.
func (p *pipeline) admit(ctx context.Context, text, hint string) (backend.DocumentType, error) {
	start := time.Now()
	ok, err := p.backend.ValidateMedicalDocument(ctx, text)
	p.metrics.observeStage(StageValidate, p.backend.Mode(), start, err)

	if err != nil {
		p.logger.WarnContext(ctx, "validation failed; allowing document", "error", err)
	} else if !ok {
		return "", ErrValidationRejected
	}

	return parseHint(hint)
}

// complete analyzes a stored document and persists the result.
func (p *pipeline) complete(ctx context.Context, id uuid.UUID, text string, docType backend.DocumentType) (*Result, error) {
	result, err := p.analyze(ctx, text, docType)
	if err != nil {
		p.metrics.recordOutcome(OutcomeFailed)
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			stageErr.DocumentID = id
		}
		return nil, err
	}

	if err := p.persist(ctx, id, result); err != nil {
		p.metrics.recordOutcome(OutcomeFailed)
		return nil, &StageError{DocumentID: id, Stage: StagePersist, Err: err}
	}

	p.metrics.recordOutcome(OutcomePersisted)
	p.logger.InfoContext(ctx, "pipeline complete",
		"document_id", id,
		"document_type", result.Classification.DocumentType,
		"codes", len(result.Codes.Codes),
	)
	return result, nil
}

func (p *pipeline) analyze(ctx context.Context, text string, docType backend.DocumentType) (*Result, error) {
	mode := p.backend.Mode()
	result := &Result{Backend: mode}

	if docType != "" {
		result.Classification = hintClassification(docType)
	} else {
		start := time.Now()
		c, err := p.backend.Classify(ctx, text)
		p.metrics.observeStage(StageClassify, mode, start, err)
		if err != nil {
			return nil, &StageError{Stage: StageClassify, Err: err}
		}
		result.Classification = c
		p.logger.InfoContext(ctx, "classify complete",
			"document_type", c.DocumentType,
			"confidence", c.Confidence,
		)
	}

	resolved := result.Classification.DocumentType

	start := time.Now()
	codes, err := p.backend.ExtractCodes(ctx, text, resolved)
	p.metrics.observeStage(StageCodes, mode, start, err)
	if err != nil {
		return nil, &StageError{Stage: StageCodes, Err: err}
	}
	result.Codes = codes
	p.logger.InfoContext(ctx, "codes complete", "count", len(codes.Codes))

	start = time.Now()
	summary, err := p.backend.Summarize(ctx, text, resolved, codes.Codes)
	p.metrics.observeStage(StageSummarize, mode, start, err)
	if err != nil {
		return nil, &StageError{Stage: StageSummarize, Err: err}
	}
	summary.Confidence = summaryConfidence(summary, len(codes.Codes) > 0)
	result.Summary = summary
	p.logger.InfoContext(ctx, "summarize complete", "bullets", len(summary.Bullets))

	result.Error = markers(result)
	return result, nil
}

func (p *pipeline) persist(ctx context.Context, id uuid.UUID, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	start := time.Now()
	_, err = p.results.Save(ctx, results.SaveCommand{
		DocumentID: id,
		Backend:    string(result.Backend),
		Payload:    payload,
	})
	p.metrics.observeStage(StagePersist, result.Backend, start, err)
	return err
}

func parseHint(hint string) (backend.DocumentType, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "", nil
	}

	t, err := backend.ParseDocumentType(hint)
	if err != nil {
		return "", fmt.Errorf("%w; allowed: %s", ErrInvalidHint, allowedTypes())
	}
	return t, nil
}

func allowedTypes() string {
	types := backend.DocumentTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func hintClassification(t backend.DocumentType) backend.Classification {
	return backend.Classification{
		DocumentType: t,
		Confidence:   1.0,
		Rationale:    HintRationale,
		Evidence:     []string{},
	}
}

// summaryConfidence keeps a usable backend confidence and otherwise falls
// back to a value that depends on whether any codes were found.
func summaryConfidence(s backend.Summary, hasCodes bool) float64 {
	fallback := summaryConfidenceWithoutCodes
	if hasCodes {
		fallback = summaryConfidenceWithCodes
	}

	if s.Error != "" {
		return fallback
	}
	return formatting.Confidence(s.Confidence, fallback)
}

func markers(r *Result) string {
	var found []string
	if r.Classification.Error != "" {
		found = append(found, string(StageClassify)+": "+r.Classification.Error)
	}
	if r.Codes.Error != "" {
		found = append(found, string(StageCodes)+": "+r.Codes.Error)
	}
	if r.Summary.Error != "" {
		found = append(found, string(StageSummarize)+": "+r.Summary.Error)
	}
	return strings.Join(found, "; ")
}
