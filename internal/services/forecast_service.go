package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"retailcli/internal/config"
	"retailcli/internal/model"
	"retailcli/internal/pricing"
	"retailcli/pkg/contracts/domain"
)

// ErrModelNotTrained is returned when the model artifact has not been
// produced yet. Handlers map it to 503.
var ErrModelNotTrained = fmt.Errorf("demand model not trained yet")

// Prediction is the serving-time forecast for one feature vector.
type Prediction struct {
	PredictedQuantity float64   `json:"predicted_quantity"`
	RecommendedPrice  float64   `json:"recommended_price"`
	Revenue           float64   `json:"revenue"`
	Policy            string    `json:"policy"`
	ModelTrainedAt    time.Time `json:"model_trained_at"`
}

// ForecastService serves on-demand demand predictions. The serving surface
// always prices with the flat markup policy; the heavier grid optimizers
// stay in the batch pipeline.
type ForecastService struct {
	paths  *config.Paths
	markup *pricing.MarkupPolicy
	logger *slog.Logger

	mu    sync.RWMutex
	model *model.DemandModel
}

// NewForecastService creates a forecast service. The model artifact is
// loaded lazily on first use so the server can start before a pipeline run
// has completed.
func NewForecastService(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastService{
		paths:  paths,
		markup: pricing.NewMarkupPolicy(cfg.Pricing.MarkupRate),
		logger: logger,
	}
}

// Predict forecasts demand for the given feature row and prices it with
// the markup policy.
func (s *ForecastService) Predict(ctx context.Context, row domain.FeatureRow) (*Prediction, error) {
	m, err := s.loadModel()
	if err != nil {
		return nil, err
	}

	quantity, err := m.PredictNamed(domain.FeatureNames, row.Vector())
	if err != nil {
		return nil, fmt.Errorf("predict demand: %w", err)
	}

	recommendation, err := s.markup.Recommend(row, quantity)
	if err != nil {
		return nil, fmt.Errorf("price prediction: %w", err)
	}

	s.logger.DebugContext(ctx, "Prediction served",
		slog.String("stock_code", row.StockCode),
		slog.Float64("predicted_quantity", quantity),
		slog.Float64("recommended_price", recommendation.Price))

	return &Prediction{
		PredictedQuantity: quantity,
		RecommendedPrice:  recommendation.Price,
		Revenue:           recommendation.Revenue,
		Policy:            s.markup.Name(),
		ModelTrainedAt:    m.TrainedAt,
	}, nil
}

// Reload discards the cached model so the next request reads the artifact
// again. Called after a pipeline run replaces the model file.
func (s *ForecastService) Reload() {
	s.mu.Lock()
	s.model = nil
	s.mu.Unlock()
}

// ModelReady reports whether the model artifact exists and loads.
func (s *ForecastService) ModelReady() bool {
	_, err := s.loadModel()
	return err == nil
}

func (s *ForecastService) loadModel() (*model.DemandModel, error) {
	s.mu.RLock()
	cached := s.model
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		return s.model, nil
	}

	loaded, err := model.Load(s.paths.ModelFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrModelNotTrained
		}
		return nil, fmt.Errorf("load model artifact: %w", err)
	}

	s.logger.Info("Demand model loaded",
		slog.String("path", s.paths.ModelFile),
		slog.Time("trained_at", loaded.TrainedAt),
		slog.Int("train_rows", loaded.TrainRows))

	s.model = loaded
	return s.model, nil
}
