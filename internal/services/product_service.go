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
	"retailcli/internal/dataset"
	"retailcli/internal/model"
	"retailcli/internal/pricing"
	"retailcli/pkg/contracts/domain"
)

// ErrNoRecommendations is returned when no recommendation artifact exists
// yet. Handlers map it to 503.
var ErrNoRecommendations = fmt.Errorf("no price recommendations available yet")

// RecommendationFilter narrows a recommendation listing.
type RecommendationFilter struct {
	StockCode string
	From      time.Time
	To        time.Time
	Limit     int
}

// ProductService answers product analytics queries over the pipeline's
// artifacts: top products, recommendation listings and per-product optimal
// prices.
type ProductService struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	mu         sync.Mutex
	continuous *pricing.ContinuousGridPolicy
}

// NewProductService creates a product service over the configured artifact
// paths.
func NewProductService(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{cfg: cfg, paths: paths, logger: logger}
}

// TopProducts returns the top n products by recommended revenue. It reads
// the precomputed artifact when present and falls back to recomputing from
// the recommendation rows.
func (s *ProductService) TopProducts(ctx context.Context, n int) ([]domain.TopProduct, error) {
	if n <= 0 {
		n = s.cfg.Pricing.TopN
	}

	top, err := dataset.LoadTopProducts(s.paths.TopProductsCSV)
	if err == nil {
		if len(top) > n {
			top = top[:n]
		}
		return top, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load top products: %w", err)
	}

	s.logger.DebugContext(ctx, "Top products artifact missing, recomputing from recommendations")

	rows, err := s.loadPredictions()
	if err != nil {
		return nil, err
	}
	return pricing.TopProducts(rows, n), nil
}

// Recommendations lists recommendation rows matching the filter, newest
// first within a product's span order preserved.
func (s *ProductService) Recommendations(ctx context.Context, filter RecommendationFilter) ([]domain.PredictionRow, error) {
	rows, err := s.loadPredictions()
	if err != nil {
		return nil, err
	}

	var out []domain.PredictionRow
	for _, row := range rows {
		if filter.StockCode != "" && row.StockCode != filter.StockCode {
			continue
		}
		if !filter.From.IsZero() && row.EventDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && row.EventDate.After(filter.To) {
			continue
		}
		out = append(out, row)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}

	return out, nil
}

// GridOverride narrows the continuous search grid for a single query.
// Zero fields fall back to the configured bounds.
type GridOverride struct {
	Min   float64
	Max   float64
	Steps int
}

// OptimalPrice runs the continuous grid search for one product over its
// full sales history. Unknown stock codes surface pricing.ErrUnknownProduct.
func (s *ProductService) OptimalPrice(ctx context.Context, stockCode string, override *GridOverride) (*pricing.OptimalPrice, error) {
	policy, err := s.continuousPolicy()
	if err != nil {
		return nil, err
	}
	if override != nil {
		min, max, steps := s.cfg.Pricing.GridMin, s.cfg.Pricing.GridMax, s.cfg.Pricing.GridSteps
		if override.Min > 0 {
			min = override.Min
		}
		if override.Max > 0 {
			max = override.Max
		}
		if override.Steps > 0 {
			steps = override.Steps
		}
		return policy.FindOptimalPriceOn(stockCode, min, max, steps)
	}
	return policy.FindOptimalPrice(stockCode)
}

// Elasticities returns the per-product elasticity estimates, most elastic
// first.
func (s *ProductService) Elasticities(ctx context.Context) ([]domain.ElasticityResult, error) {
	rows, err := s.loadPredictions()
	if err != nil {
		return nil, err
	}
	return pricing.EstimateElasticity(s.logger, rows), nil
}

// InvalidateCache drops the cached grid policy so the next optimal-price
// query rebuilds it from fresh artifacts.
func (s *ProductService) InvalidateCache() {
	s.mu.Lock()
	s.continuous = nil
	s.mu.Unlock()
}

// loadPredictions reads the recommendation artifact. Rows whose persisted
// revenue is missing get it recomputed from price and quantity.
func (s *ProductService) loadPredictions() ([]domain.PredictionRow, error) {
	rows, err := dataset.LoadPredictions(s.paths.RecommendationsCSV)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRecommendations
		}
		return nil, fmt.Errorf("load recommendations: %w", err)
	}

	for i := range rows {
		if rows[i].Revenue == 0 && rows[i].PredictedQuantity > 0 {
			price := rows[i].RecommendedPrice
			if price == 0 {
				price = rows[i].AvgPrice
			}
			rows[i].Revenue = price * rows[i].PredictedQuantity
		}
	}

	return rows, nil
}

// continuousPolicy builds (once) the grid policy over the current model
// and sales history.
func (s *ProductService) continuousPolicy() (*pricing.ContinuousGridPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.continuous != nil {
		return s.continuous, nil
	}

	m, err := model.Load(s.paths.ModelFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrModelNotTrained
		}
		return nil, fmt.Errorf("load model artifact: %w", err)
	}

	history, err := dataset.LoadDailySales(s.paths.DailySalesCSV)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRecommendations
		}
		return nil, fmt.Errorf("load daily sales: %w", err)
	}

	policy, err := pricing.NewContinuousGridPolicy(m, history,
		s.cfg.Pricing.GridMin, s.cfg.Pricing.GridMax, s.cfg.Pricing.GridSteps, s.logger)
	if err != nil {
		return nil, err
	}

	s.continuous = policy
	return policy, nil
}
