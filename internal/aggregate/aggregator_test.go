package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/pkg/contracts/domain"
)

func tx(stockCode, description string, qty int64, price float64, when time.Time) domain.CleanedTransaction {
	return domain.CleanedTransaction{
		Transaction: domain.Transaction{
			InvoiceNo:   "536365",
			StockCode:   stockCode,
			Description: description,
			Quantity:    qty,
			InvoiceDate: when,
			UnitPrice:   price,
			CustomerID:  "17850",
			Country:     "United Kingdom",
		},
	}
}

func TestAggregateSameDaySameProduct(t *testing.T) {
	morning := time.Date(2011, 3, 14, 9, 30, 0, 0, time.UTC)
	evening := time.Date(2011, 3, 14, 18, 15, 0, 0, time.UTC)

	rows := NewAggregator(nil).Aggregate([]domain.CleanedTransaction{
		tx("85123A", "White Hanging Heart", 3, 10.0, morning),
		tx("85123A", "White Hanging Heart", 5, 12.0, evening),
	})

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "85123A", row.StockCode)
	assert.Equal(t, "White Hanging Heart", row.ProductName)
	assert.Equal(t, time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC), row.EventDate)
	assert.Equal(t, int64(8), row.DailyQuantity)
	assert.InDelta(t, 90.0, row.DailyRevenue, 0.001)
	// Unweighted mean of unit prices, not revenue/quantity.
	assert.InDelta(t, 11.0, row.AvgPrice, 0.001)
}

func TestAggregateSplitsByDayAndProduct(t *testing.T) {
	day1 := time.Date(2011, 3, 14, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2011, 3, 15, 10, 0, 0, 0, time.UTC)

	rows := NewAggregator(nil).Aggregate([]domain.CleanedTransaction{
		tx("85123A", "Heart", 2, 5.0, day1),
		tx("85123A", "Heart", 4, 5.0, day2),
		tx("71053", "Lantern", 1, 3.0, day1),
	})

	require.Len(t, rows, 3)
	// Sorted by stock code, then date.
	assert.Equal(t, "71053", rows[0].StockCode)
	assert.Equal(t, "85123A", rows[1].StockCode)
	assert.Equal(t, "85123A", rows[2].StockCode)
	assert.True(t, rows[1].EventDate.Before(rows[2].EventDate))
	assert.Equal(t, int64(2), rows[1].DailyQuantity)
	assert.Equal(t, int64(4), rows[2].DailyQuantity)
}

func TestAggregateEmptyInput(t *testing.T) {
	rows := NewAggregator(nil).Aggregate(nil)
	assert.Empty(t, rows)
}

func TestAggregatePicksFirstNonEmptyName(t *testing.T) {
	when := time.Date(2011, 3, 14, 10, 0, 0, 0, time.UTC)

	rows := NewAggregator(nil).Aggregate([]domain.CleanedTransaction{
		tx("85123A", "", 1, 2.0, when),
		tx("85123A", "Heart", 1, 2.0, when),
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "Heart", rows[0].ProductName)
}

func TestBuildProductMapping(t *testing.T) {
	day := time.Date(2011, 3, 14, 0, 0, 0, 0, time.UTC)

	mappings := BuildProductMapping([]domain.DailySales{
		{StockCode: "A1", ProductName: "", EventDate: day},
		{StockCode: "B2", ProductName: "Lantern", EventDate: day},
		{StockCode: "A1", ProductName: "", EventDate: day.AddDate(0, 0, 1)},
		{StockCode: "C3", ProductName: "", EventDate: day},
	})

	require.Len(t, mappings, 3)
	assert.Equal(t, domain.ProductMapping{StockCode: "A1", ProductName: "Product 1"}, mappings[0])
	assert.Equal(t, domain.ProductMapping{StockCode: "B2", ProductName: "Lantern"}, mappings[1])
	// Numbering follows first-seen order, so the gap stays visible.
	assert.Equal(t, domain.ProductMapping{StockCode: "C3", ProductName: "Product 3"}, mappings[2])
}
