package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/meddoc/pkg/formatting"
)

// Remote calls a generative model for every capability.
//
// Classify, ExtractCodes, and Summarize return ErrBackendUnavailable when the
// model call fails and never fall back to heuristic output.
// ValidateMedicalDocument logs the failure and passes the document.
type Remote struct {
	model  Model
	opts   RemoteOptions
	logger *slog.Logger
}

// NewRemote returns a backend that sends each capability's fixed instruction to model.
func NewRemote(model Model, opts RemoteOptions, logger *slog.Logger) *Remote {
	return &Remote{
		model:  model,
		opts:   opts,
		logger: logger,
	}
}

func (r *Remote) Mode() Mode { return ModeRemote }

func (r *Remote) Classify(ctx context.Context, text string) (Classification, error) {
	m, err := r.call(ctx, CapabilityClassify, text)
	if err != nil {
		return Classification{}, err
	}
	return toClassification(m), nil
}

func (r *Remote) ExtractCodes(ctx context.Context, text string, docType DocumentType) (CodeSet, error) {
	input := fmt.Sprintf("DOCUMENT TYPE: %s\n\nMEDICAL DOCUMENT:\n%s", docType, text)

	m, err := r.call(ctx, CapabilityCodes, input)
	if err != nil {
		return CodeSet{}, err
	}
	return toCodeSet(m), nil
}

func (r *Remote) Summarize(ctx context.Context, text string, docType DocumentType, codes []CodeFinding) (Summary, error) {
	if codes == nil {
		codes = []CodeFinding{}
	}
	codesJSON, err := json.Marshal(codes)
	if err != nil {
		return Summary{}, fmt.Errorf("encode codes: %w", err)
	}

	input := fmt.Sprintf(
		"DOCUMENT TYPE: %s\nEXTRACTED ICD-10 CODES: %s\n\nMEDICAL DOCUMENT:\n%s",
		docType, codesJSON, text,
	)

	m, err := r.call(ctx, CapabilitySummarize, input)
	if err != nil {
		return Summary{}, err
	}
	return toSummary(m), nil
}

func (r *Remote) ValidateMedicalDocument(ctx context.Context, text string) (bool, error) {
	input := "Is this a medical document?\n\n" + truncate(text, r.opts.ValidateChars)

	m, err := r.call(ctx, CapabilityValidate, input)
	if err != nil {
		r.logger.WarnContext(ctx, "validation call failed, accepting document", "error", err)
		return true, nil
	}
	return toValidation(m), nil
}

func (r *Remote) call(ctx context.Context, c Capability, input string) (map[string]any, error) {
	if r.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.CallTimeout)
		defer cancel()
	}

	start := time.Now()

	raw, err := r.model.Call(ctx, Instructions(c), input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, c, err)
	}

	m := formatting.Repair(raw)
	if formatting.IsUnparseable(m) {
		r.logger.WarnContext(ctx, "model response unparseable", "capability", c)
	}

	r.logger.DebugContext(
		ctx, "model call complete",
		"capability", c,
		"duration", time.Since(start),
	)

	return m, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
