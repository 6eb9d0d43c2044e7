package results

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/meddoc/pkg/handlers"
	"github.com/JaimeStill/meddoc/pkg/routes"
)

// Handler provides HTTP endpoints for stored pipeline results.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "results"),
	}
}

// Routes returns the route group definition for result endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/results",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{documentId}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{documentId}", Handler: h.Delete},
		},
	}
}

// Find returns the stored result for the documentId path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Delete removes the stored result for the documentId path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
