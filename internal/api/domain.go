package api

import (
	"fmt"

	"github.com/JaimeStill/meddoc/internal/backend"
	"github.com/JaimeStill/meddoc/internal/documents"
	"github.com/JaimeStill/meddoc/internal/evaluation"
	"github.com/JaimeStill/meddoc/internal/pipeline"
	"github.com/JaimeStill/meddoc/internal/results"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents  documents.System
	Results    results.System
	Pipeline   pipeline.System
	Evaluation evaluation.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	var model backend.Model
	if runtime.Backend.Mode == string(backend.ModeRemote) {
		model = backend.NewAgentModel(runtime.Agent)
	}

	be, err := backend.New(&runtime.Backend, model, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("backend init failed: %w", err)
	}

	resultsSystem := results.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	docsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	pipelineSystem := pipeline.New(
		be,
		docsSystem,
		resultsSystem,
		pipeline.NewMetrics(runtime.Metrics),
		runtime.Logger,
	)

	evaluationSystem := evaluation.New(
		pipelineSystem,
		runtime.Storage,
		&runtime.Evaluation,
		runtime.Logger,
	)

	return &Domain{
		Documents:  docsSystem,
		Results:    resultsSystem,
		Pipeline:   pipelineSystem,
		Evaluation: evaluationSystem,
	}, nil
}
