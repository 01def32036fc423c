// Package features derives calendar and per-product time-series features
// from the daily sales aggregate.
package features

import (
	"log/slog"
	"sort"

	"retailcli/pkg/contracts/domain"
)

const (
	shortWindow = 7
	longWindow  = 30
)

// Builder computes engineered feature rows from daily sales.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a feature builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build derives one FeatureRow per DailySales row. Rolling means use a
// trailing window of up to 7/30 observations including the current day, so
// a product's first day averages to its own quantity. Lags look one row
// back within the same product only: the quantity lag falls back to 0 and
// the price lag falls back to the dataset-wide mean price. The asymmetry is
// deliberate and preserved; downstream consumers may depend on it.
// Output is ordered ascending by (stock_code, event_date).
func (b *Builder) Build(sales []domain.DailySales) []domain.FeatureRow {
	if len(sales) == 0 {
		return nil
	}

	ordered := make([]domain.DailySales, len(sales))
	copy(ordered, sales)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].StockCode != ordered[j].StockCode {
			return ordered[i].StockCode < ordered[j].StockCode
		}
		return ordered[i].EventDate.Before(ordered[j].EventDate)
	})

	globalMeanPrice := meanPrice(ordered)

	rows := make([]domain.FeatureRow, 0, len(ordered))

	// history holds the current product's quantities seen so far, in date
	// order. Windows never cross into another product's rows.
	var history []float64
	var prev *domain.DailySales

	for i := range ordered {
		day := ordered[i]

		if prev == nil || prev.StockCode != day.StockCode {
			history = history[:0]
			prev = nil
		}

		qty := float64(day.DailyQuantity)
		history = append(history, qty)

		row := domain.FeatureRow{
			StockCode:     day.StockCode,
			ProductName:   day.ProductName,
			EventDate:     day.EventDate,
			DayOfWeek:     domain.DayOfWeek(day.EventDate),
			Month:         int(day.EventDate.Month()),
			Quarter:       domain.Quarter(day.EventDate),
			Qty7dMA:       trailingMean(history, shortWindow),
			Qty30dMA:      trailingMean(history, longWindow),
			AvgPrice:      day.AvgPrice,
			DailyQuantity: day.DailyQuantity,
		}

		if prev != nil {
			row.QtyLag1 = float64(prev.DailyQuantity)
			row.PriceLag1 = prev.AvgPrice
		} else {
			row.QtyLag1 = 0
			row.PriceLag1 = globalMeanPrice
		}

		rows = append(rows, row)
		prev = &ordered[i]
	}

	b.logger.Info("Built feature rows",
		slog.Int("daily_rows", len(ordered)),
		slog.Int("feature_rows", len(rows)),
		slog.Float64("global_mean_price", globalMeanPrice))

	return rows
}

// trailingMean averages the trailing up-to-window values, current included.
func trailingMean(values []float64, window int) float64 {
	start := len(values) - window
	if start < 0 {
		start = 0
	}

	sum := 0.0
	for _, v := range values[start:] {
		sum += v
	}
	return sum / float64(len(values)-start)
}

// meanPrice computes the dataset-wide mean of daily average prices, the
// fallback for a product's first price lag.
func meanPrice(sales []domain.DailySales) float64 {
	if len(sales) == 0 {
		return 0
	}

	sum := 0.0
	for _, s := range sales {
		sum += s.AvgPrice
	}
	return sum / float64(len(sales))
}
