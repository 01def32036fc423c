package pricing

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"retailcli/pkg/contracts/domain"
)

// ErrUnknownProduct is returned when an optimization is requested for a
// stock code with no sales history. Callers map it to a referential error.
var ErrUnknownProduct = errors.New("unknown product")

// OptimalPrice is the continuous grid search result for one product.
type OptimalPrice struct {
	StockCode        string  `json:"stock_code"`
	BestPrice        float64 `json:"best_price"`
	ExpectedQuantity float64 `json:"expected_quantity"`
	ExpectedRevenue  float64 `json:"expected_revenue"`
}

// productProfile freezes a product's non-price features at their historical
// average (quantities, prices) or mode (calendar fields).
type productProfile struct {
	avgPrice  float64
	meanQty   float64
	dayOfWeek int
	month     int
	quarter   int
}

// ContinuousGridPolicy samples a dense linear price grid and predicts
// demand at each candidate price, holding every other feature at the
// product's historical profile. Unlike the discrete grid, the
// price-quantity relationship is modeled.
type ContinuousGridPolicy struct {
	predictor Predictor
	profiles  map[string]productProfile
	minPrice  float64
	maxPrice  float64
	steps     int
	logger    *slog.Logger
}

// NewContinuousGridPolicy builds a continuous_grid policy over the given
// sales history.
func NewContinuousGridPolicy(predictor Predictor, history []domain.DailySales, minPrice, maxPrice float64, steps int, logger *slog.Logger) (*ContinuousGridPolicy, error) {
	if predictor == nil {
		return nil, fmt.Errorf("continuous grid needs a predictor")
	}
	if steps < 2 {
		return nil, fmt.Errorf("continuous grid needs at least 2 steps, got %d", steps)
	}
	if minPrice <= 0 || maxPrice <= minPrice {
		return nil, fmt.Errorf("invalid price grid bounds [%.2f, %.2f]", minPrice, maxPrice)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ContinuousGridPolicy{
		predictor: predictor,
		profiles:  buildProfiles(history),
		minPrice:  minPrice,
		maxPrice:  maxPrice,
		steps:     steps,
		logger:    logger,
	}, nil
}

// Name implements Policy.
func (p *ContinuousGridPolicy) Name() string { return "continuous_grid" }

// Recommend implements Policy: it runs the product-level grid search for
// the row's stock code. The externally predicted quantity is ignored; the
// grid re-predicts demand at every candidate price.
func (p *ContinuousGridPolicy) Recommend(row domain.FeatureRow, _ float64) (Recommendation, error) {
	optimal, err := p.FindOptimalPrice(row.StockCode)
	if err != nil {
		return Recommendation{}, err
	}

	return Recommendation{
		Price:   optimal.BestPrice,
		Revenue: optimal.ExpectedRevenue,
	}, nil
}

// FindOptimalPrice searches the configured price grid for the
// revenue-maximizing price of one product.
func (p *ContinuousGridPolicy) FindOptimalPrice(stockCode string) (*OptimalPrice, error) {
	return p.FindOptimalPriceOn(stockCode, p.minPrice, p.maxPrice, p.steps)
}

// FindOptimalPriceOn searches an explicit price grid for the
// revenue-maximizing price of one product. It fails explicitly for unknown
// stock codes and when the revenue vector contains no finite value.
func (p *ContinuousGridPolicy) FindOptimalPriceOn(stockCode string, minPrice, maxPrice float64, steps int) (*OptimalPrice, error) {
	profile, ok := p.profiles[stockCode]
	if !ok {
		return nil, fmt.Errorf("%w: stock code %s not found in sales history", ErrUnknownProduct, stockCode)
	}
	if steps < 2 || minPrice <= 0 || maxPrice <= minPrice {
		return nil, fmt.Errorf("invalid price grid [%.2f, %.2f] with %d steps", minPrice, maxPrice, steps)
	}

	step := (maxPrice - minPrice) / float64(steps-1)

	best := &OptimalPrice{StockCode: stockCode}
	bestRevenue := math.Inf(-1)
	found := false

	for i := 0; i < steps; i++ {
		price := minPrice + step*float64(i)

		// Non-price features frozen at the profile; avg_price carries
		// the candidate.
		x := []float64{
			profile.meanQty,
			profile.meanQty,
			profile.meanQty,
			profile.avgPrice,
			float64(profile.dayOfWeek),
			float64(profile.month),
			float64(profile.quarter),
			price,
		}

		quantity, err := p.predictor.PredictNamed(domain.FeatureNames, x)
		if err != nil {
			return nil, fmt.Errorf("predict demand at price %.2f: %w", price, err)
		}

		revenue := price * quantity
		if math.IsNaN(revenue) {
			continue
		}

		if !found || revenue > bestRevenue {
			found = true
			bestRevenue = revenue
			best.BestPrice = price
			best.ExpectedQuantity = quantity
			best.ExpectedRevenue = revenue
		}
	}

	if !found {
		return nil, fmt.Errorf("all candidate revenues are NaN for stock code %s", stockCode)
	}

	p.logger.Debug("continuous grid optimum",
		slog.String("stock_code", stockCode),
		slog.Float64("best_price", best.BestPrice),
		slog.Float64("expected_revenue", best.ExpectedRevenue))

	return best, nil
}

// buildProfiles computes the frozen feature profile for every product in
// the sales history.
func buildProfiles(history []domain.DailySales) map[string]productProfile {
	type accumulator struct {
		priceSum float64
		qtySum   float64
		count    int
		dow      map[int]int
		month    map[int]int
		quarter  map[int]int
	}

	acc := make(map[string]*accumulator)
	for _, day := range history {
		a, ok := acc[day.StockCode]
		if !ok {
			a = &accumulator{
				dow:     make(map[int]int),
				month:   make(map[int]int),
				quarter: make(map[int]int),
			}
			acc[day.StockCode] = a
		}

		a.priceSum += day.AvgPrice
		a.qtySum += float64(day.DailyQuantity)
		a.count++
		a.dow[domain.DayOfWeek(day.EventDate)]++
		a.month[int(day.EventDate.Month())]++
		a.quarter[domain.Quarter(day.EventDate)]++
	}

	profiles := make(map[string]productProfile, len(acc))
	for code, a := range acc {
		profiles[code] = productProfile{
			avgPrice:  a.priceSum / float64(a.count),
			meanQty:   a.qtySum / float64(a.count),
			dayOfWeek: mode(a.dow),
			month:     mode(a.month),
			quarter:   mode(a.quarter),
		}
	}

	return profiles
}

// mode returns the most frequent key, smallest key on ties for determinism.
func mode(counts map[int]int) int {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	best, bestCount := 0, -1
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}
