// Package backend classifies medical documents, extracts diagnostic codes,
// and summarizes findings through one of two interchangeable implementations:
// a deterministic rule-based heuristic or a generative model.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/meddoc/internal/config"
)

// Mode identifies the active backend implementation.
type Mode string

const (
	ModeHeuristic Mode = config.BackendHeuristic
	ModeRemote    Mode = config.BackendRemote
)

// Backend performs the pipeline capabilities against a single document text.
// Implementations are safe for concurrent use.
type Backend interface {
	// Mode reports which implementation is active.
	Mode() Mode
	// Classify resolves the document type.
	Classify(ctx context.Context, text string) (Classification, error)
	// ExtractCodes returns the diagnostic codes supported by the text.
	ExtractCodes(ctx context.Context, text string, docType DocumentType) (CodeSet, error)
	// Summarize produces a clinical summary informed by the extracted codes.
	Summarize(ctx context.Context, text string, docType DocumentType, codes []CodeFinding) (Summary, error)
	// ValidateMedicalDocument reports whether the text looks like a medical document.
	ValidateMedicalDocument(ctx context.Context, text string) (bool, error)
}

// New selects the backend implementation from cfg.Mode. The model is only
// consulted for the remote mode and may be nil otherwise.
func New(cfg *config.BackendConfig, model Model, logger *slog.Logger) (Backend, error) {
	logger = logger.With("system", "backend", "mode", cfg.Mode)

	switch Mode(cfg.Mode) {
	case ModeHeuristic:
		return NewHeuristic(), nil
	case ModeRemote:
		if model == nil {
			return nil, ErrModelRequired
		}
		return NewRemote(model, RemoteOptions{
			CallTimeout:   cfg.CallTimeoutDuration(),
			ValidateChars: cfg.ValidateChars,
		}, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}

// RemoteOptions bounds the remote backend's model calls.
type RemoteOptions struct {
	CallTimeout   time.Duration
	ValidateChars int
}
