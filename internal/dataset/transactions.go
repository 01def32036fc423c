package dataset

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"retailcli/internal/exporter"
	"retailcli/pkg/contracts/domain"
)

// cleanedHeader is the column set of cleaned_transactions.csv: the raw
// transaction columns plus the derived calendar features and line revenue.
var cleanedHeader = []string{
	"invoice_no", "stock_code", "description", "quantity", "invoice_date",
	"unit_price", "customer_id", "country",
	"day_of_week", "month", "quarter", "total_price",
}

// SaveCleanedTransactions writes the cleaned transaction artifact.
func SaveCleanedTransactions(writer *exporter.CSVWriter, path string, rows []domain.CleanedTransaction) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.InvoiceNo,
			row.StockCode,
			row.Description,
			strconv.FormatInt(row.Quantity, 10),
			row.InvoiceDate.Format(TimestampFormat),
			exporter.FormatFloat(row.UnitPrice, 2),
			row.CustomerID,
			row.Country,
			strconv.Itoa(row.DayOfWeek),
			strconv.Itoa(row.Month),
			strconv.Itoa(row.Quarter),
			exporter.FormatFloat(row.TotalValue, 2),
		})
	}

	return writer.WriteSimpleCSV(path, cleanedHeader, records)
}

// LoadCleanedTransactions reads the cleaned transaction artifact back.
func LoadCleanedTransactions(path string) ([]domain.CleanedTransaction, error) {
	file, reader, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	index, err := columnIndex(header, cleanedHeader...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rows []domain.CleanedTransaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		quantity, err := parseInt(record, index, "quantity")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		unitPrice, err := parseFloat(record, index, "unit_price")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		totalValue, err := parseFloat(record, index, "total_price")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		invoiceDate, err := time.Parse(TimestampFormat, field(record, index, "invoice_date"))
		if err != nil {
			return nil, fmt.Errorf("%s: parse invoice_date: %w", path, err)
		}
		dayOfWeek, err := parseInt(record, index, "day_of_week")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		month, err := parseInt(record, index, "month")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		quarter, err := parseInt(record, index, "quarter")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		rows = append(rows, domain.CleanedTransaction{
			Transaction: domain.Transaction{
				InvoiceNo:   field(record, index, "invoice_no"),
				StockCode:   field(record, index, "stock_code"),
				Description: field(record, index, "description"),
				Quantity:    quantity,
				InvoiceDate: invoiceDate,
				UnitPrice:   unitPrice,
				CustomerID:  field(record, index, "customer_id"),
				Country:     field(record, index, "country"),
			},
			DayOfWeek:  int(dayOfWeek),
			Month:      int(month),
			Quarter:    int(quarter),
			TotalValue: totalValue,
		})
	}

	return rows, nil
}
