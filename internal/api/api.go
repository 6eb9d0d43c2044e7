// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/meddoc/internal/config"
	"github.com/JaimeStill/meddoc/internal/infrastructure"
	"github.com/JaimeStill/meddoc/pkg/middleware"
	"github.com/JaimeStill/meddoc/pkg/module"
)

const metricsNamespace = "meddoc"

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.Metrics(runtime.Metrics, metricsNamespace))

	return m, nil
}
