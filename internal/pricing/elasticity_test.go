package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/pkg/contracts/domain"
)

func predictionRow(name string, price, qty float64) domain.PredictionRow {
	return domain.PredictionRow{
		FeatureRow:        domain.FeatureRow{StockCode: name, ProductName: name},
		RecommendedPrice:  price,
		PredictedQuantity: qty,
		Revenue:           price * qty,
	}
}

func TestEstimateElasticityRecoversLogLogSlope(t *testing.T) {
	// Constant elasticity -2: q = 1000 * p^-2.
	var rows []domain.PredictionRow
	for _, p := range []float64{5, 10, 15, 20, 25} {
		rows = append(rows, predictionRow("widget", p, 1000*math.Pow(p, -2)))
	}

	results := EstimateElasticity(nil, rows)
	require.Len(t, results, 1)
	assert.Equal(t, "widget", results[0].ProductName)
	assert.InDelta(t, -2.0, results[0].PriceElasticity, 1e-6)
	assert.Equal(t, 5, results[0].Observations)
}

func TestEstimateElasticitySkipsThinProducts(t *testing.T) {
	rows := []domain.PredictionRow{
		predictionRow("lonely", 10, 5),
		predictionRow("pair", 10, 8),
		predictionRow("pair", 12, 6),
	}

	results := EstimateElasticity(nil, rows)
	require.Len(t, results, 1)
	assert.Equal(t, "pair", results[0].ProductName)
}

func TestEstimateElasticityIgnoresNonPositiveRows(t *testing.T) {
	rows := []domain.PredictionRow{
		predictionRow("a", 10, 0),
		predictionRow("a", 12, -1),
		predictionRow("a", 14, 5),
	}

	// Only one usable observation remains, so the product is skipped.
	results := EstimateElasticity(nil, rows)
	assert.Empty(t, results)
}

func TestEstimateElasticitySortsMostElasticFirst(t *testing.T) {
	var rows []domain.PredictionRow
	for _, p := range []float64{5, 10, 20} {
		rows = append(rows, predictionRow("steep", p, 1000*math.Pow(p, -3)))
		rows = append(rows, predictionRow("flat", p, 1000*math.Pow(p, -1)))
	}

	results := EstimateElasticity(nil, rows)
	require.Len(t, results, 2)
	assert.Equal(t, "steep", results[0].ProductName)
	assert.Equal(t, "flat", results[1].ProductName)
}
