package ingest

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"retailcli/pkg/contracts/domain"
)

// Clean applies the cleaning rules to parsed transactions and derives the
// calendar features carried by the cleaned artifact:
//   - drop rows with non-positive quantity or unit price
//   - drop exact duplicate rows
//
// Rows with missing identifiers or timestamps never reach this point; the
// reader drops them during parsing. An empty input yields an empty output.
func Clean(logger *slog.Logger, transactions []domain.Transaction) []domain.CleanedTransaction {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]struct{}, len(transactions))
	cleaned := make([]domain.CleanedTransaction, 0, len(transactions))

	var droppedInvalid, droppedDuplicate int
	for _, tx := range transactions {
		if !tx.IsValid() {
			droppedInvalid++
			continue
		}

		key := duplicateKey(tx)
		if _, ok := seen[key]; ok {
			droppedDuplicate++
			continue
		}
		seen[key] = struct{}{}

		total := decimal.NewFromInt(tx.Quantity).Mul(decimal.NewFromFloat(tx.UnitPrice))

		cleaned = append(cleaned, domain.CleanedTransaction{
			Transaction: tx,
			DayOfWeek:   domain.DayOfWeek(tx.InvoiceDate),
			Month:       int(tx.InvoiceDate.Month()),
			Quarter:     domain.Quarter(tx.InvoiceDate),
			TotalValue:  total.Round(2).InexactFloat64(),
		})
	}

	logger.Info("Cleaned transactions",
		slog.Int("input", len(transactions)),
		slog.Int("kept", len(cleaned)),
		slog.Int("dropped_invalid", droppedInvalid),
		slog.Int("dropped_duplicate", droppedDuplicate))

	return cleaned
}

// duplicateKey builds the exact-duplicate identity of a transaction row.
func duplicateKey(tx domain.Transaction) string {
	return fmt.Sprintf("%s|%s|%d|%s|%.4f|%s|%s",
		tx.InvoiceNo, tx.StockCode, tx.Quantity,
		tx.InvoiceDate.Format("2006-01-02 15:04:05"),
		tx.UnitPrice, tx.CustomerID, tx.Country)
}
