package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retailcli/internal/config"
	apierrors "retailcli/internal/errors"
	"retailcli/internal/middleware"
	"retailcli/internal/services"
)

// RouterDeps bundles what the router needs.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Forecast *services.ForecastService
	Products *services.ProductService
	Health   *services.HealthService
}

// NewRouter builds the full HTTP router with the standard middleware chain
// and all API routes mounted.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errorHandler := apierrors.NewErrorHandler(logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	if deps.Config.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			deps.Config.Server.RateLimit.RPS,
			deps.Config.Server.RateLimit.Burst,
			logger)
		r.Use(limiter.Handler)
	}

	healthHandler := NewHealthHandler(deps.Health, logger)
	r.Get("/healthz", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	forecastHandler := NewForecastHandler(deps.Forecast, logger, errorHandler)
	productHandler := NewProductHandler(deps.Products, logger, errorHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/predict", forecastHandler.Predict)

		r.Route("/products", func(r chi.Router) {
			r.Get("/top", productHandler.GetTopProducts)
			r.Get("/{stockCode}/optimal-price", productHandler.GetOptimalPrice)
		})

		r.Get("/recommendations", productHandler.GetRecommendations)
		r.Get("/elasticity", productHandler.GetElasticity)
	})

	return r
}
