package pricing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/pkg/contracts/domain"
)

// constantDemand always predicts the same quantity.
type constantDemand struct {
	qty float64
}

func (c constantDemand) PredictNamed(names []string, x []float64) (float64, error) {
	return c.qty, nil
}

// failingDemand always errors.
type failingDemand struct{}

func (failingDemand) PredictNamed(names []string, x []float64) (float64, error) {
	return 0, fmt.Errorf("boom")
}

func TestRecommendRunsPolicyPerRow(t *testing.T) {
	rows := []domain.FeatureRow{
		{StockCode: "A", ProductName: "Heart", AvgPrice: 10.0,
			EventDate: time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC)},
		{StockCode: "B", ProductName: "Lantern", AvgPrice: 20.0,
			EventDate: time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC)},
	}

	predictions, err := Recommend(nil, constantDemand{qty: 5}, NewMarkupPolicy(0.05), rows)
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	assert.InDelta(t, 5.0, predictions[0].PredictedQuantity, 1e-9)
	assert.InDelta(t, 10.5, predictions[0].RecommendedPrice, 1e-9)
	assert.InDelta(t, 52.5, predictions[0].Revenue, 1e-9)
	assert.InDelta(t, 21.0, predictions[1].RecommendedPrice, 1e-9)
}

func TestRecommendPropagatesPredictorError(t *testing.T) {
	rows := []domain.FeatureRow{{StockCode: "A", AvgPrice: 10.0}}

	_, err := Recommend(nil, failingDemand{}, NewMarkupPolicy(0.05), rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predict row 0")
}

func TestTopProductsAggregatesAndSorts(t *testing.T) {
	rows := []domain.PredictionRow{
		predictionRow("small", 10, 1),
		predictionRow("big", 10, 20),
		predictionRow("big", 10, 30),
		predictionRow("medium", 10, 9),
	}

	top := TopProducts(rows, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "big", top[0].ProductName)
	assert.InDelta(t, 500.0, top[0].TotalRevenue, 1e-9)
	assert.Equal(t, "medium", top[1].ProductName)
}

func TestTopProductsFallsBackToStockCode(t *testing.T) {
	rows := []domain.PredictionRow{
		{FeatureRow: domain.FeatureRow{StockCode: "85123A"}, Revenue: 100},
	}

	top := TopProducts(rows, 10)
	require.Len(t, top, 1)
	assert.Equal(t, "85123A", top[0].ProductName)
}
