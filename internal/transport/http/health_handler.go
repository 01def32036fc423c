package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"retailcli/internal/services"
)

// HealthHandler serves the liveness/readiness endpoint.
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Check handles GET /healthz. A degraded status still returns 200; the
// process is up even while the pipeline artifacts are missing.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.service.Check(r.Context())
	render.Status(r, http.StatusOK)
	render.JSON(w, r, status)
}
