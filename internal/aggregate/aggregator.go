// Package aggregate collapses cleaned transactions into one row per
// (product, calendar day).
package aggregate

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"retailcli/pkg/contracts/domain"
)

// Aggregator computes the daily per-product sales aggregate.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates a daily sales aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// groupKey identifies one (product, day) aggregation group.
type groupKey struct {
	stockCode string
	eventDate time.Time
}

// group accumulates one day's transactions for one product. Currency sums
// run on decimals so repeated float addition cannot drift the 2-dp artifact.
type group struct {
	productName string
	quantity    int64
	revenue     decimal.Decimal
	priceSum    decimal.Decimal
	priceCount  int64
}

// Aggregate groups cleaned transactions by (stock_code, event date) and
// emits DailySales rows sorted ascending by product then date:
// daily_quantity = sum(quantity), daily_revenue = sum(quantity*unit_price),
// avg_price = unweighted mean(unit_price). An empty input yields an empty
// output, not an error.
func (a *Aggregator) Aggregate(transactions []domain.CleanedTransaction) []domain.DailySales {
	groups := make(map[groupKey]*group)

	for _, tx := range transactions {
		key := groupKey{stockCode: tx.StockCode, eventDate: tx.EventDate()}

		g, ok := groups[key]
		if !ok {
			g = &group{productName: tx.Description}
			groups[key] = g
		}

		if g.productName == "" && tx.Description != "" {
			g.productName = tx.Description
		}

		price := decimal.NewFromFloat(tx.UnitPrice)
		g.quantity += tx.Quantity
		g.revenue = g.revenue.Add(decimal.NewFromInt(tx.Quantity).Mul(price))
		g.priceSum = g.priceSum.Add(price)
		g.priceCount++
	}

	rows := make([]domain.DailySales, 0, len(groups))
	for key, g := range groups {
		avgPrice := g.priceSum.Div(decimal.NewFromInt(g.priceCount))

		rows = append(rows, domain.DailySales{
			StockCode:     key.stockCode,
			ProductName:   g.productName,
			EventDate:     key.eventDate,
			DailyQuantity: g.quantity,
			DailyRevenue:  g.revenue.Round(2).InexactFloat64(),
			AvgPrice:      avgPrice.Round(2).InexactFloat64(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StockCode != rows[j].StockCode {
			return rows[i].StockCode < rows[j].StockCode
		}
		return rows[i].EventDate.Before(rows[j].EventDate)
	})

	a.logger.Info("Aggregated daily sales",
		slog.Int("transactions", len(transactions)),
		slog.Int("daily_rows", len(rows)))

	return rows
}

// BuildProductMapping synthesizes the stock-code-to-name mapping from the
// aggregate. Products without a real description get a generated
// "Product {n}" name, numbered in first-seen order.
func BuildProductMapping(rows []domain.DailySales) []domain.ProductMapping {
	names := make(map[string]string)
	var order []string

	for _, row := range rows {
		if _, ok := names[row.StockCode]; !ok {
			names[row.StockCode] = row.ProductName
			order = append(order, row.StockCode)
		} else if names[row.StockCode] == "" && row.ProductName != "" {
			names[row.StockCode] = row.ProductName
		}
	}

	mappings := make([]domain.ProductMapping, 0, len(order))
	for i, code := range order {
		name := names[code]
		if name == "" {
			name = fmt.Sprintf("Product %d", i+1)
		}
		mappings = append(mappings, domain.ProductMapping{StockCode: code, ProductName: name})
	}

	return mappings
}
