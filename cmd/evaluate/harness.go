package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/config"
	"github.com/JaimeStill/meddoc/internal/evaluation"
	"github.com/JaimeStill/meddoc/internal/pipeline"
	"github.com/JaimeStill/meddoc/pkg/lifecycle"
	"github.com/JaimeStill/meddoc/pkg/storage"
)

// newHarness builds an evaluation system outside the server: no database and
// no persisted results, only the backend and report storage.
func newHarness(logger *slog.Logger) (evaluation.System, *lifecycle.Coordinator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config load failed: %w", err)
	}

	lc := lifecycle.New()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("storage init failed: %w", err)
	}
	if err := store.Start(lc); err != nil {
		return nil, nil, fmt.Errorf("storage start failed: %w", err)
	}
	lc.WaitForStartup()

	var model backend.Model
	if cfg.Backend.Mode == config.BackendRemote {
		model = backend.NewAgentModel(cfg.Agent)
	}

	be, err := backend.New(&cfg.Backend, model, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("backend init failed: %w", err)
	}

	runner := pipeline.New(be, nil, nil, nil, logger)
	return evaluation.New(runner, store, &cfg.Evaluation, logger), lc, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
