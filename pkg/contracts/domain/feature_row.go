package domain

import (
	"time"
)

// FeatureNames lists the engineered features in the exact order the demand
// model is trained on. Inference must present features in this order; the
// model artifact rejects anything else.
var FeatureNames = []string{
	"qty_7d_ma",
	"qty_30d_ma",
	"qty_lag_1",
	"price_lag_1",
	"day_of_week",
	"month",
	"quarter",
	"avg_price",
}

// TargetColumn is the name of the label column in the train/test CSVs. The
// value stored under it is always the daily quantity.
const TargetColumn = "target"

// FeatureRow is one engineered row per (stock_code, event_date), derived
// one-to-one from DailySales. Rolling and lag features only look at the
// same product's prior history.
type FeatureRow struct {
	StockCode   string    `json:"stock_code" csv:"stock_code"`
	ProductName string    `json:"product_name" csv:"product_name"`
	EventDate   time.Time `json:"event_date" csv:"event_date"`

	DayOfWeek int `json:"day_of_week" csv:"day_of_week"`
	Month     int `json:"month" csv:"month"`
	Quarter   int `json:"quarter" csv:"quarter"`

	Qty7dMA   float64 `json:"qty_7d_ma" csv:"qty_7d_ma"`
	Qty30dMA  float64 `json:"qty_30d_ma" csv:"qty_30d_ma"`
	QtyLag1   float64 `json:"qty_lag_1" csv:"qty_lag_1"`
	PriceLag1 float64 `json:"price_lag_1" csv:"price_lag_1"`
	AvgPrice  float64 `json:"avg_price" csv:"avg_price"`

	// DailyQuantity is the training target carried alongside the features.
	DailyQuantity int64 `json:"daily_quantity" csv:"daily_quantity"`
}

// Vector returns the feature values in FeatureNames order.
func (f FeatureRow) Vector() []float64 {
	return []float64{
		f.Qty7dMA,
		f.Qty30dMA,
		f.QtyLag1,
		f.PriceLag1,
		float64(f.DayOfWeek),
		float64(f.Month),
		float64(f.Quarter),
		f.AvgPrice,
	}
}

// PredictionRow is a FeatureRow plus the model prediction and the optimizer
// output. Rows are immutable once written; a fresh run regenerates the set.
type PredictionRow struct {
	FeatureRow

	PredictedQuantity float64 `json:"predicted_quantity" csv:"predicted_quantity"`
	RecommendedPrice  float64 `json:"recommended_price" csv:"recommended_price"`
	Revenue           float64 `json:"revenue" csv:"revenue"`
}

// TopProduct is one row of the top-products-by-revenue report.
type TopProduct struct {
	ProductName  string  `json:"product_name" csv:"product_name"`
	TotalRevenue float64 `json:"total_revenue" csv:"total_revenue"`
}

// ElasticityResult is the per-product price elasticity diagnostic: the
// slope of log(quantity) on log(price).
type ElasticityResult struct {
	ProductName     string  `json:"product_name" csv:"product_name"`
	PriceElasticity float64 `json:"price_elasticity" csv:"price_elasticity"`
	Observations    int     `json:"observations" csv:"observations"`
}
