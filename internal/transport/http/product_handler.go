package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailcli/internal/errors"
	"retailcli/internal/pricing"
	"retailcli/internal/services"
)

// ProductHandler serves product analytics over the pipeline artifacts.
type ProductHandler struct {
	service      *services.ProductService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewProductHandler creates a product handler.
func NewProductHandler(service *services.ProductService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ProductHandler {
	return &ProductHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "product_handler")),
		errorHandler: errorHandler,
	}
}

// GetTopProducts handles GET /api/v1/products/top?limit=10.
func (h *ProductHandler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "must be a positive integer"))
			return
		}
		n = parsed
	}

	top, err := h.service.TopProducts(r.Context(), n)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"products": top,
		"count":    len(top),
	})
}

// GetOptimalPrice handles GET /api/v1/products/{stockCode}/optimal-price.
// Optional min, max and steps query parameters override the configured
// search grid for this query only.
func (h *ProductHandler) GetOptimalPrice(w http.ResponseWriter, r *http.Request) {
	stockCode := chi.URLParam(r, "stockCode")
	if stockCode == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("stockCode", "stock code is required"))
		return
	}

	var override *services.GridOverride
	if q := r.URL.Query(); q.Get("min") != "" || q.Get("max") != "" || q.Get("steps") != "" {
		override = &services.GridOverride{}
		var err error
		if raw := q.Get("min"); raw != "" {
			if override.Min, err = strconv.ParseFloat(raw, 64); err != nil || override.Min <= 0 {
				h.errorHandler.HandleError(w, r, apierrors.ErrValidation("min", "must be a positive number"))
				return
			}
		}
		if raw := q.Get("max"); raw != "" {
			if override.Max, err = strconv.ParseFloat(raw, 64); err != nil || override.Max <= 0 {
				h.errorHandler.HandleError(w, r, apierrors.ErrValidation("max", "must be a positive number"))
				return
			}
		}
		if raw := q.Get("steps"); raw != "" {
			if override.Steps, err = strconv.Atoi(raw); err != nil || override.Steps < 2 {
				h.errorHandler.HandleError(w, r, apierrors.ErrValidation("steps", "must be an integer of at least 2"))
				return
			}
		}
	}

	optimal, err := h.service.OptimalPrice(r.Context(), stockCode, override)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownProduct) {
			h.errorHandler.HandleError(w, r, apierrors.ProductNotFoundError(stockCode))
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, optimal)
}

// GetRecommendations handles GET /api/v1/recommendations with optional
// stock_code, from, to (YYYY-MM-DD) and limit query parameters.
func (h *ProductHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	filter := services.RecommendationFilter{
		StockCode: r.URL.Query().Get("stock_code"),
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from", "must be YYYY-MM-DD"))
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("to", "must be YYYY-MM-DD"))
			return
		}
		filter.To = to
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	rows, err := h.service.Recommendations(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"recommendations": rows,
		"count":           len(rows),
	})
}

// GetElasticity handles GET /api/v1/elasticity.
func (h *ProductHandler) GetElasticity(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Elasticities(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"elasticities": results,
		"count":        len(results),
	})
}

// handleServiceError maps service sentinel errors to API errors.
func (h *ProductHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrModelNotTrained):
		h.errorHandler.HandleError(w, r, apierrors.ErrModelNotReady)
	case errors.Is(err, services.ErrNoRecommendations):
		h.errorHandler.HandleError(w, r, apierrors.ErrNoRecommendations)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
