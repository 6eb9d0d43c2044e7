package api

import (
	"net/http"

	"github.com/JaimeStill/meddoc/internal/config"
	"github.com/JaimeStill/meddoc/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Documents.Handler(domain.Results).Routes(),
		domain.Results.Handler().Routes(),
		domain.Pipeline.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Evaluation.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
