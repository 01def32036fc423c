package domain

import (
	"time"
)

// Transaction represents a single raw retail transaction line as found in
// the source export (one row per invoice line).
type Transaction struct {
	InvoiceNo   string    `json:"invoice_no" csv:"invoice_no" validate:"required"`
	StockCode   string    `json:"stock_code" csv:"stock_code" validate:"required"`
	Description string    `json:"description,omitempty" csv:"description"`
	Quantity    int64     `json:"quantity" csv:"quantity"`
	InvoiceDate time.Time `json:"invoice_date" csv:"invoice_date"`
	UnitPrice   float64   `json:"unit_price" csv:"unit_price" validate:"min=0"`
	CustomerID  string    `json:"customer_id,omitempty" csv:"customer_id"`
	Country     string    `json:"country,omitempty" csv:"country"`
}

// IsValid reports whether the transaction survives cleaning: required
// identifiers present, a parseable timestamp, positive quantity and price.
func (t Transaction) IsValid() bool {
	return t.InvoiceNo != "" && t.StockCode != "" && !t.InvoiceDate.IsZero() &&
		t.Quantity > 0 && t.UnitPrice > 0
}

// TotalPrice returns the line revenue (quantity x unit price).
func (t Transaction) TotalPrice() float64 {
	return float64(t.Quantity) * t.UnitPrice
}

// EventDate returns the calendar date of the transaction with the time
// component stripped.
func (t Transaction) EventDate() time.Time {
	return time.Date(t.InvoiceDate.Year(), t.InvoiceDate.Month(), t.InvoiceDate.Day(), 0, 0, 0, 0, time.UTC)
}

// CleanedTransaction is a Transaction enriched with the calendar features
// persisted alongside the raw columns in cleaned_transactions.csv.
type CleanedTransaction struct {
	Transaction

	DayOfWeek  int     `json:"day_of_week" csv:"day_of_week"`
	Month      int     `json:"month" csv:"month"`
	Quarter    int     `json:"quarter" csv:"quarter"`
	TotalValue float64 `json:"total_price" csv:"total_price"`
}

// DayOfWeek returns the weekday with Monday = 0 through Sunday = 6,
// matching the convention used by the feature set.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Quarter returns the calendar quarter (1-4) for the given time.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
