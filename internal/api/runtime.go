package api

import (
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/meddoc/internal/config"
	"github.com/JaimeStill/meddoc/internal/infrastructure"
	"github.com/JaimeStill/meddoc/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Backend    config.BackendConfig
	Agent      gaconfig.AgentConfig
	Evaluation config.EvaluationConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Metrics:   infra.Metrics,
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Backend:    cfg.Backend,
		Agent:      cfg.Agent,
		Evaluation: cfg.Evaluation,
	}
}
