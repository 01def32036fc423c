package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/pkg/contracts/domain"
)

func featureRow(stockCode string, when time.Time) domain.FeatureRow {
	return domain.FeatureRow{StockCode: stockCode, EventDate: when}
}

func TestSplitChronologicalPerProductTail(t *testing.T) {
	var rows []domain.FeatureRow
	for i := 0; i < 10; i++ {
		rows = append(rows, featureRow("A", day(2011, 3, 1+i)))
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, featureRow("B", day(2011, 3, 1+i)))
	}

	train, test, err := SplitChronological(rows, 0.2)
	require.NoError(t, err)
	assert.Len(t, train, 12) // 8 of A, 4 of B
	assert.Len(t, test, 3)   // 2 of A, 1 of B

	// Every test row is later than all train rows of the same product.
	latestTrain := map[string]time.Time{}
	for _, r := range train {
		if r.EventDate.After(latestTrain[r.StockCode]) {
			latestTrain[r.StockCode] = r.EventDate
		}
	}
	for _, r := range test {
		assert.True(t, r.EventDate.After(latestTrain[r.StockCode]),
			"test row %s/%s leaks into training window", r.StockCode, r.EventDate)
	}
}

func TestSplitChronologicalSingleRowProductStaysInTrain(t *testing.T) {
	rows := []domain.FeatureRow{featureRow("A", day(2011, 3, 1))}

	train, test, err := SplitChronological(rows, 0.5)
	require.NoError(t, err)
	assert.Len(t, train, 1)
	assert.Empty(t, test)
}

func TestSplitChronologicalRejectsBadFraction(t *testing.T) {
	for _, holdout := range []float64{0, 1, -0.1, 1.5} {
		_, _, err := SplitChronological(nil, holdout)
		assert.Error(t, err, "holdout %v", holdout)
	}
}
