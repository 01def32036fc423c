// Package ingest loads raw retail transaction exports and applies the
// cleaning rules that precede aggregation.
package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"retailcli/pkg/contracts/domain"
)

// columnAliases maps the canonical transaction columns to the header
// spellings seen across source exports (the original Online Retail Excel
// export uses CamelCase, later CSV extracts use snake_case).
var columnAliases = map[string][]string{
	"invoice_no":   {"invoice_no", "InvoiceNo", "invoice"},
	"stock_code":   {"stock_code", "StockCode", "product_id"},
	"description":  {"description", "Description", "product_name"},
	"quantity":     {"quantity", "Quantity"},
	"invoice_date": {"invoice_date", "InvoiceDate", "order_date"},
	"unit_price":   {"unit_price", "UnitPrice", "price"},
	"customer_id":  {"customer_id", "CustomerID", "Customer ID"},
	"country":      {"country", "Country"},
}

// timestampLayouts are tried in order when parsing transaction timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 15:04",
	"01/02/2006 15:04",
	"1/2/06 15:04",
}

// Reader loads raw transaction files.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a transaction reader.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadFile loads transactions from a CSV or Excel export, dispatching on
// the file extension.
func (r *Reader) ReadFile(path string) ([]domain.Transaction, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return r.readExcel(path)
	case ".csv":
		return r.readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported transaction file format: %s", filepath.Ext(path))
	}
}

// readExcel loads transactions from the first sheet of an Excel export.
func (r *Reader) readExcel(path string) ([]domain.Transaction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", filepath.Base(path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	r.logger.Info("Loaded Excel transaction export",
		slog.String("file", filepath.Base(path)),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", len(rows)))

	return r.parseRows(rows, path)
}

// readCSV loads transactions from a CSV export.
func (r *Reader) readCSV(path string) ([]domain.Transaction, error) {
	rows, err := readCSVRows(path)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Loaded CSV transaction export",
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", len(rows)))

	return r.parseRows(rows, path)
}

// parseRows converts tabular rows into transactions. The header row is
// required; unknown columns are ignored. Rows with a missing invoice id,
// stock code or timestamp are dropped here (cleaning), while a present but
// unparseable timestamp aborts the run with no partial output.
func (r *Reader) parseRows(rows [][]string, path string) ([]domain.Transaction, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	index, err := mapColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	var (
		transactions []domain.Transaction
		dropped      int
	)

	for i, row := range rows[1:] {
		invoiceNo := cell(row, index, "invoice_no")
		stockCode := cell(row, index, "stock_code")
		rawDate := cell(row, index, "invoice_date")

		if invoiceNo == "" || stockCode == "" || rawDate == "" {
			dropped++
			continue
		}

		invoiceDate, err := parseTimestamp(rawDate)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+2, err)
		}

		quantity, err := parseQuantity(cell(row, index, "quantity"))
		if err != nil {
			dropped++
			continue
		}

		unitPrice, err := strconv.ParseFloat(cell(row, index, "unit_price"), 64)
		if err != nil {
			dropped++
			continue
		}

		transactions = append(transactions, domain.Transaction{
			InvoiceNo:   invoiceNo,
			StockCode:   stockCode,
			Description: cell(row, index, "description"),
			Quantity:    quantity,
			InvoiceDate: invoiceDate,
			UnitPrice:   unitPrice,
			CustomerID:  cell(row, index, "customer_id"),
			Country:     cell(row, index, "country"),
		})
	}

	r.logger.Info("Parsed transactions",
		slog.Int("parsed", len(transactions)),
		slog.Int("dropped", dropped))

	return transactions, nil
}

// mapColumns resolves the canonical columns against the header row.
func mapColumns(header []string) (map[string]int, error) {
	position := make(map[string]int, len(header))
	for i, name := range header {
		position[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))] = i
	}

	index := make(map[string]int, len(columnAliases))
	var missing []string
	for canonical, aliases := range columnAliases {
		found := false
		for _, alias := range aliases {
			if i, ok := position[strings.ToLower(alias)]; ok {
				index[canonical] = i
				found = true
				break
			}
		}
		if !found {
			switch canonical {
			case "description", "customer_id", "country":
				// Optional columns
			default:
				missing = append(missing, canonical)
			}
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return index, nil
}

// cell returns the trimmed value of a mapped column, "" when absent.
func cell(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseTimestamp tries the known transaction timestamp layouts.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", raw)
}

// parseQuantity parses an integer quantity, tolerating a ".0" suffix from
// spreadsheet exports.
func parseQuantity(raw string) (int64, error) {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
