// Package evaluation scores the pipeline against a built-in gold dataset.
// It reports micro-averaged code precision, recall, and F1, mean summary
// coverage, and, when the backend classifies, classification accuracy.
package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/config"
	"github.com/JaimeStill/meddoc/internal/pipeline"
	"github.com/JaimeStill/meddoc/pkg/storage"
)

// Mode selects how item document types are resolved.
type Mode string

const (
	// ModeWithHint passes the gold type as the pipeline hint.
	ModeWithHint Mode = config.EvaluationWithHint
	// ModeClassify lets the backend classify and scores its accuracy.
	ModeClassify Mode = config.EvaluationClassify
)

// ParseMode validates s as an evaluation mode. An empty string yields fallback.
func ParseMode(s string, fallback Mode) (Mode, error) {
	switch Mode(s) {
	case "":
		return fallback, nil
	case ModeWithHint, ModeClassify:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Runner executes the pipeline without persisting results.
type Runner interface {
	Backend() backend.Backend
	Run(ctx context.Context, text, hint string) (*pipeline.Result, error)
}

// System defines the public contract for evaluation operations.
type System interface {
	Handler() *Handler

	// Run evaluates every gold item and stores the report.
	Run(ctx context.Context, mode Mode) (*Report, error)
	// Latest returns the most recent report or ErrNotFound.
	Latest(ctx context.Context) (*Report, error)
	// Dataset returns the gold items evaluated by Run.
	Dataset() []GoldItem
	// DefaultMode is the mode used when a caller does not choose one.
	DefaultMode() Mode
}

type evaluator struct {
	runner  Runner
	store   *reportStore
	workers int
	mode    Mode
	logger  *slog.Logger
}

// New creates an evaluation system that runs items through runner and
// stores reports in store under cfg.Prefix.
func New(runner Runner, store storage.System, cfg *config.EvaluationConfig, logger *slog.Logger) System {
	return &evaluator{
		runner:  runner,
		store:   &reportStore{storage: store, prefix: cfg.Prefix},
		workers: cfg.Workers,
		mode:    Mode(cfg.Mode),
		logger:  logger.With("system", "evaluation"),
	}
}

func (e *evaluator) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *evaluator) Dataset() []GoldItem {
	return Dataset()
}

func (e *evaluator) DefaultMode() Mode {
	return e.mode
}

func (e *evaluator) Run(ctx context.Context, mode Mode) (*Report, error) {
	items := Dataset()
	outcomes := make([]ItemResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount(len(items)))

	for i := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[i] = e.evaluate(gctx, i, items[i], mode)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate items: %w", err)
	}

	report := reduce(outcomes, mode, e.runner.Backend().Mode(), time.Now())

	key, err := e.store.save(ctx, report)
	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "evaluation complete",
		"key", key,
		"mode", mode,
		"items", report.Items,
		"codes_f1", report.CodesF1,
		"summary_coverage", report.SummaryCoverage,
	)
	return report, nil
}

// Latest reads the latest key on every call. Other processes sharing the
// store prefix may have written a newer report since this one last ran.
func (e *evaluator) Latest(ctx context.Context) (*Report, error) {
	return e.store.latest(ctx)
}

// evaluate scores one item. Failures are recorded on the item and count every
// gold code as a false negative.
func (e *evaluator) evaluate(ctx context.Context, index int, item GoldItem, mode Mode) ItemResult {
	out := ItemResult{
		Index:          index,
		ExpectedType:   item.DocType,
		ExpectedCodes:  item.GoldCodes,
		PredictedCodes: []string{},
	}

	hint := ""
	if mode == ModeWithHint {
		hint = string(item.DocType)
	}

	result, err := e.runner.Run(ctx, item.Text, hint)
	if err != nil {
		e.logger.WarnContext(ctx, "evaluation item failed", "index", index, "error", err)
		out.Error = err.Error()
		out.Counts = ScoreCodes(nil, item.GoldCodes)
		return out
	}

	for _, c := range result.Codes.Codes {
		out.PredictedCodes = append(out.PredictedCodes, c.Code)
	}

	out.PredictedType = result.Classification.DocumentType
	out.Summary = result.Summary.Summary
	out.Counts = ScoreCodes(out.PredictedCodes, item.GoldCodes)
	out.Precision = out.Counts.Precision()
	out.Recall = out.Counts.Recall()
	out.F1 = out.Counts.F1()
	out.Coverage = Coverage(out.Summary, item.GoldFacts)

	return out
}

func (e *evaluator) workerCount(items int) int {
	if e.workers > 0 {
		return e.workers
	}
	return max(min(runtime.NumCPU(), items), 1)
}
