package evaluation

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/meddoc/pkg/handlers"
	"github.com/JaimeStill/meddoc/pkg/routes"
)

// Handler provides HTTP endpoints for evaluation runs and reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "evaluation"),
	}
}

// Routes returns the route group definition for evaluation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/evaluations",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Run},
			{Method: "GET", Pattern: "/latest", Handler: h.Latest},
			{Method: "GET", Pattern: "/dataset", Handler: h.Dataset},
		},
	}
}

// Run evaluates the gold dataset in the mode given by the mode query parameter.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	mode, err := ParseMode(r.URL.Query().Get("mode"), h.sys.DefaultMode())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	report, err := h.sys.Run(r.Context(), mode)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Latest returns the most recent stored report.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	report, err := h.sys.Latest(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Dataset returns the built-in gold items.
func (h *Handler) Dataset(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Dataset())
}
