package domain

import (
	"time"
)

// DailySales is one aggregated row per (stock_code, event_date): the sum of
// quantities and revenue and the unweighted mean unit price of the day's
// transactions for that product.
type DailySales struct {
	StockCode     string    `json:"stock_code" csv:"stock_code"`
	ProductName   string    `json:"product_name" csv:"product_name"`
	EventDate     time.Time `json:"event_date" csv:"event_date"`
	DailyQuantity int64     `json:"daily_quantity" csv:"daily_quantity"`
	DailyRevenue  float64   `json:"daily_revenue" csv:"daily_revenue"`
	AvgPrice      float64   `json:"avg_price" csv:"avg_price"`
}

// IsValid reports whether the aggregate row is internally consistent.
func (d DailySales) IsValid() bool {
	return d.StockCode != "" && !d.EventDate.IsZero() &&
		d.DailyQuantity > 0 && d.DailyRevenue > 0 && d.AvgPrice > 0
}

// ProductMapping pairs a stock code with a display name. Names are
// synthesized ("Product 1", "Product 2", ...) when the source data carries
// no usable descriptions.
type ProductMapping struct {
	StockCode   string `json:"stock_code" csv:"stock_code"`
	ProductName string `json:"product_name" csv:"product_name"`
}
