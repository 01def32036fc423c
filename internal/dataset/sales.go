package dataset

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"retailcli/internal/exporter"
	"retailcli/pkg/contracts/domain"
)

// dailySalesHeader is the column set of daily_sales.csv.
var dailySalesHeader = []string{
	"stock_code", "product_name", "event_date",
	"daily_quantity", "daily_revenue", "avg_price",
}

// SaveDailySales writes the daily aggregate artifact. Currency fields are
// serialized with 2 decimal places.
func SaveDailySales(writer *exporter.CSVWriter, path string, rows []domain.DailySales) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.StockCode,
			row.ProductName,
			row.EventDate.Format(DateFormat),
			strconv.FormatInt(row.DailyQuantity, 10),
			exporter.FormatFloat(row.DailyRevenue, 2),
			exporter.FormatFloat(row.AvgPrice, 2),
		})
	}

	return writer.WriteSimpleCSV(path, dailySalesHeader, records)
}

// LoadDailySales reads the daily aggregate artifact sorted ascending by
// (stock_code, event_date), the order the feature builder requires.
func LoadDailySales(path string) ([]domain.DailySales, error) {
	file, reader, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header == nil {
		return nil, nil
	}

	index, err := columnIndex(header, dailySalesHeader...)
	if err != nil {
		return nil, fmt.Errorf("daily sales %s: %w", path, err)
	}

	var rows []domain.DailySales
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read daily sales %s: %w", path, err)
		}

		row := domain.DailySales{
			StockCode:   field(record, index, "stock_code"),
			ProductName: field(record, index, "product_name"),
		}
		if row.EventDate, err = parseDate(record, index, "event_date"); err != nil {
			return nil, fmt.Errorf("daily sales %s: %w", path, err)
		}
		if row.DailyQuantity, err = parseInt(record, index, "daily_quantity"); err != nil {
			return nil, fmt.Errorf("daily sales %s: %w", path, err)
		}
		if row.DailyRevenue, err = parseFloat(record, index, "daily_revenue"); err != nil {
			return nil, fmt.Errorf("daily sales %s: %w", path, err)
		}
		if row.AvgPrice, err = parseFloat(record, index, "avg_price"); err != nil {
			return nil, fmt.Errorf("daily sales %s: %w", path, err)
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StockCode != rows[j].StockCode {
			return rows[i].StockCode < rows[j].StockCode
		}
		return rows[i].EventDate.Before(rows[j].EventDate)
	})

	return rows, nil
}

// SaveProductMapping writes the stock-code-to-name mapping artifact.
func SaveProductMapping(writer *exporter.CSVWriter, path string, mappings []domain.ProductMapping) error {
	records := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		records = append(records, []string{m.StockCode, m.ProductName})
	}

	return writer.WriteSimpleCSV(path, []string{"stock_code", "product_name"}, records)
}

// LoadProductMapping reads the mapping artifact into a lookup map.
func LoadProductMapping(path string) (map[string]string, error) {
	file, reader, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header == nil {
		return map[string]string{}, nil
	}

	index, err := columnIndex(header, "stock_code", "product_name")
	if err != nil {
		return nil, fmt.Errorf("product mapping %s: %w", path, err)
	}

	mapping := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read product mapping %s: %w", path, err)
		}
		mapping[field(record, index, "stock_code")] = field(record, index, "product_name")
	}

	return mapping, nil
}
