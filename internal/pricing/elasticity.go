package pricing

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"retailcli/pkg/contracts/domain"
)

// EstimateElasticity fits a log-log linear trend of recommended price vs
// predicted quantity per product. The slope is the price elasticity of
// demand; by economic convention a negative slope indicates a normal good.
//
// Rows with non-positive predicted quantity are excluded, and products with
// fewer than 2 remaining observations are skipped rather than errored.
// Results are sorted ascending by elasticity (most elastic first).
func EstimateElasticity(logger *slog.Logger, rows []domain.PredictionRow) []domain.ElasticityResult {
	if logger == nil {
		logger = slog.Default()
	}

	type observations struct {
		logPrices []float64
		logQtys   []float64
	}

	perProduct := make(map[string]*observations)
	var order []string

	for _, row := range rows {
		if row.PredictedQuantity <= 0 || row.RecommendedPrice <= 0 {
			continue
		}

		name := row.ProductName
		if name == "" {
			name = row.StockCode
		}

		obs, ok := perProduct[name]
		if !ok {
			obs = &observations{}
			perProduct[name] = obs
			order = append(order, name)
		}

		obs.logPrices = append(obs.logPrices, math.Log(row.RecommendedPrice))
		obs.logQtys = append(obs.logQtys, math.Log(row.PredictedQuantity))
	}

	var results []domain.ElasticityResult
	skipped := 0

	for _, name := range order {
		obs := perProduct[name]
		if len(obs.logPrices) < 2 {
			skipped++
			continue
		}

		// Slope of log(quantity) on log(price) is the elasticity.
		_, slope := stat.LinearRegression(obs.logPrices, obs.logQtys, nil, false)
		if math.IsNaN(slope) || math.IsInf(slope, 0) {
			skipped++
			continue
		}

		results = append(results, domain.ElasticityResult{
			ProductName:     name,
			PriceElasticity: slope,
			Observations:    len(obs.logPrices),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PriceElasticity < results[j].PriceElasticity
	})

	logger.Info("Estimated price elasticity",
		slog.Int("products", len(results)),
		slog.Int("skipped", skipped))

	return results
}
