package pricing

import (
	"fmt"
	"log/slog"
	"sort"

	"retailcli/pkg/contracts/domain"
)

// Recommend runs the demand model and the configured pricing policy over
// every feature row, producing the full recommendation set for the run.
// The output replaces any previous run's artifact wholesale.
func Recommend(logger *slog.Logger, predictor Predictor, policy Policy, rows []domain.FeatureRow) ([]domain.PredictionRow, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Running price recommendation",
		slog.String("policy", policy.Name()),
		slog.Int("rows", len(rows)))

	predictions := make([]domain.PredictionRow, 0, len(rows))
	for i, row := range rows {
		quantity, err := predictor.PredictNamed(domain.FeatureNames, row.Vector())
		if err != nil {
			return nil, fmt.Errorf("predict row %d (%s %s): %w",
				i, row.StockCode, row.EventDate.Format("2006-01-02"), err)
		}

		recommendation, err := policy.Recommend(row, quantity)
		if err != nil {
			return nil, fmt.Errorf("recommend price for row %d (%s): %w", i, row.StockCode, err)
		}

		predictions = append(predictions, domain.PredictionRow{
			FeatureRow:        row,
			PredictedQuantity: quantity,
			RecommendedPrice:  recommendation.Price,
			Revenue:           recommendation.Revenue,
		})
	}

	return predictions, nil
}

// TopProducts aggregates recommended revenue per product and returns the
// top n products sorted descending by total revenue.
func TopProducts(rows []domain.PredictionRow, n int) []domain.TopProduct {
	totals := make(map[string]float64)
	var order []string

	for _, row := range rows {
		name := row.ProductName
		if name == "" {
			name = row.StockCode
		}
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] += row.Revenue
	}

	products := make([]domain.TopProduct, 0, len(order))
	for _, name := range order {
		products = append(products, domain.TopProduct{
			ProductName:  name,
			TotalRevenue: totals[name],
		})
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].TotalRevenue > products[j].TotalRevenue
	})

	if n > 0 && len(products) > n {
		products = products[:n]
	}

	return products
}
