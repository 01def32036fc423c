// Package pricing implements the price recommendation policies and the
// price elasticity diagnostic.
//
// Three named, swappable policies exist behind one interface:
//
//   - markup_only: a flat markup on the current average price, used by the
//     serving surface. Intentionally simpler than the batch optimizers.
//   - discrete_grid: evaluates a small set of price multipliers with the
//     predicted quantity held constant (elasticity is deliberately not
//     modeled here).
//   - continuous_grid: samples a dense price grid and asks the demand model
//     for the quantity at each price, so the price-quantity relationship is
//     modeled.
package pricing

import (
	"fmt"
	"log/slog"

	"retailcli/pkg/contracts/domain"
)

// Recommendation is a policy's output for one row: the recommended price
// and the revenue implied by it at the predicted quantity.
type Recommendation struct {
	Price   float64 `json:"recommended_price"`
	Revenue float64 `json:"revenue"`
}

// Policy recommends a price for a feature row whose demand prediction has
// already been computed.
type Policy interface {
	// Name returns the policy identifier used in configuration and logs.
	Name() string
	// Recommend picks a price for the row given its predicted quantity.
	Recommend(row domain.FeatureRow, predictedQuantity float64) (Recommendation, error)
}

// Predictor produces a demand prediction for a named feature vector. The
// demand model satisfies this; tests substitute analytic stubs.
type Predictor interface {
	PredictNamed(names []string, x []float64) (float64, error)
}

// MarkupPolicy applies a flat markup to the current average price.
type MarkupPolicy struct {
	Rate float64
}

// NewMarkupPolicy creates a markup_only policy with the given rate
// (0.05 means +5%).
func NewMarkupPolicy(rate float64) *MarkupPolicy {
	return &MarkupPolicy{Rate: rate}
}

// Name implements Policy.
func (p *MarkupPolicy) Name() string { return "markup_only" }

// Recommend implements Policy.
func (p *MarkupPolicy) Recommend(row domain.FeatureRow, predictedQuantity float64) (Recommendation, error) {
	price := row.AvgPrice * (1 + p.Rate)
	return Recommendation{
		Price:   price,
		Revenue: price * predictedQuantity,
	}, nil
}

// DiscreteGridPolicy evaluates a fixed set of price multipliers. The
// predicted quantity is held constant across candidates, so revenue is
// linear in the multiplier; whenever the quantity is positive the largest
// multiplier wins. Candidates are checked in configured order and only a
// strictly greater revenue displaces the incumbent. The search starts from
// (current price, zero revenue): with a zero predicted quantity no
// candidate strictly beats zero and the current average price stands.
type DiscreteGridPolicy struct {
	Multipliers []float64
	logger      *slog.Logger
}

// NewDiscreteGridPolicy creates a discrete_grid policy.
func NewDiscreteGridPolicy(multipliers []float64, logger *slog.Logger) (*DiscreteGridPolicy, error) {
	if len(multipliers) == 0 {
		return nil, fmt.Errorf("discrete grid needs at least one multiplier")
	}
	for _, m := range multipliers {
		if m <= 0 {
			return nil, fmt.Errorf("price multiplier must be positive, got %g", m)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DiscreteGridPolicy{
		Multipliers: append([]float64{}, multipliers...),
		logger:      logger,
	}, nil
}

// Name implements Policy.
func (p *DiscreteGridPolicy) Name() string { return "discrete_grid" }

// Recommend implements Policy.
func (p *DiscreteGridPolicy) Recommend(row domain.FeatureRow, predictedQuantity float64) (Recommendation, error) {
	bestPrice := row.AvgPrice
	bestRevenue := 0.0

	for _, multiplier := range p.Multipliers {
		candidatePrice := row.AvgPrice * multiplier
		candidateRevenue := candidatePrice * predictedQuantity

		if candidateRevenue > bestRevenue {
			bestRevenue = candidateRevenue
			bestPrice = candidatePrice
		}
	}

	return Recommendation{
		Price:   bestPrice,
		Revenue: bestPrice * predictedQuantity,
	}, nil
}
