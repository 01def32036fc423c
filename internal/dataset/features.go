package dataset

import (
	"fmt"
	"io"
	"strconv"

	"retailcli/internal/exporter"
	"retailcli/pkg/contracts/domain"
)

// featureHeader is the column set of features.csv: identity columns, the
// engineered features in model order, and the carried target quantity.
var featureHeader = []string{
	"stock_code", "product_name", "event_date",
	"qty_7d_ma", "qty_30d_ma", "qty_lag_1", "price_lag_1",
	"day_of_week", "month", "quarter", "avg_price",
	"daily_quantity",
}

// featureRecord serializes the shared FeatureRow columns.
func featureRecord(row domain.FeatureRow) []string {
	return []string{
		row.StockCode,
		row.ProductName,
		row.EventDate.Format(DateFormat),
		exporter.FormatFloat(row.Qty7dMA, 4),
		exporter.FormatFloat(row.Qty30dMA, 4),
		exporter.FormatFloat(row.QtyLag1, 4),
		exporter.FormatFloat(row.PriceLag1, 2),
		strconv.Itoa(row.DayOfWeek),
		strconv.Itoa(row.Month),
		strconv.Itoa(row.Quarter),
		exporter.FormatFloat(row.AvgPrice, 2),
		strconv.FormatInt(row.DailyQuantity, 10),
	}
}

// parseFeatureRow deserializes the shared FeatureRow columns.
func parseFeatureRow(record []string, index map[string]int) (domain.FeatureRow, error) {
	var row domain.FeatureRow
	var err error

	row.StockCode = field(record, index, "stock_code")
	row.ProductName = field(record, index, "product_name")
	if row.EventDate, err = parseDate(record, index, "event_date"); err != nil {
		return row, err
	}
	if row.Qty7dMA, err = parseFloat(record, index, "qty_7d_ma"); err != nil {
		return row, err
	}
	if row.Qty30dMA, err = parseFloat(record, index, "qty_30d_ma"); err != nil {
		return row, err
	}
	if row.QtyLag1, err = parseFloat(record, index, "qty_lag_1"); err != nil {
		return row, err
	}
	if row.PriceLag1, err = parseFloat(record, index, "price_lag_1"); err != nil {
		return row, err
	}
	dow, err := parseInt(record, index, "day_of_week")
	if err != nil {
		return row, err
	}
	row.DayOfWeek = int(dow)
	month, err := parseInt(record, index, "month")
	if err != nil {
		return row, err
	}
	row.Month = int(month)
	quarter, err := parseInt(record, index, "quarter")
	if err != nil {
		return row, err
	}
	row.Quarter = int(quarter)
	if row.AvgPrice, err = parseFloat(record, index, "avg_price"); err != nil {
		return row, err
	}
	if row.DailyQuantity, err = parseInt(record, index, "daily_quantity"); err != nil {
		return row, err
	}

	return row, nil
}

// SaveFeatureRows writes the full engineered feature artifact.
func SaveFeatureRows(writer *exporter.CSVWriter, path string, rows []domain.FeatureRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, featureRecord(row))
	}

	return writer.WriteSimpleCSV(path, featureHeader, records)
}

// LoadFeatureRows reads the engineered feature artifact in file order
// (ascending by stock code then date, as written).
func LoadFeatureRows(path string) ([]domain.FeatureRow, error) {
	file, reader, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header == nil {
		return nil, nil
	}

	index, err := columnIndex(header, featureHeader...)
	if err != nil {
		return nil, fmt.Errorf("features %s: %w", path, err)
	}

	var rows []domain.FeatureRow
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read features %s: %w", path, readErr)
		}

		row, err := parseFeatureRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("features %s: %w", path, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SaveTrainingSet writes a train or test split: the 8 named features in
// model order plus the target column holding the daily quantity.
func SaveTrainingSet(writer *exporter.CSVWriter, path string, rows []domain.FeatureRow) error {
	header := append(append([]string{}, domain.FeatureNames...), domain.TargetColumn)

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, 0, len(header))
		for _, v := range row.Vector() {
			record = append(record, exporter.FormatFloat(v, 4))
		}
		record = append(record, strconv.FormatInt(row.DailyQuantity, 10))
		records = append(records, record)
	}

	return writer.WriteSimpleCSV(path, header, records)
}

// TrainingSet is a design matrix with its target vector, loaded from a
// train/test artifact.
type TrainingSet struct {
	FeatureNames []string
	X            [][]float64
	Y            []float64
}

// LoadTrainingSet reads a train/test artifact. The feature columns must be
// present under their exact names; the target column is treated as the
// daily quantity regardless of its label.
func LoadTrainingSet(path string) (*TrainingSet, error) {
	file, reader, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header == nil {
		return &TrainingSet{FeatureNames: domain.FeatureNames}, nil
	}

	required := append(append([]string{}, domain.FeatureNames...), domain.TargetColumn)
	index, err := columnIndex(header, required...)
	if err != nil {
		return nil, fmt.Errorf("training set %s: %w", path, err)
	}

	set := &TrainingSet{FeatureNames: append([]string{}, domain.FeatureNames...)}
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read training set %s: %w", path, readErr)
		}

		x := make([]float64, len(domain.FeatureNames))
		for i, name := range domain.FeatureNames {
			if x[i], err = parseFloat(record, index, name); err != nil {
				return nil, fmt.Errorf("training set %s: %w", path, err)
			}
		}
		y, err := parseFloat(record, index, domain.TargetColumn)
		if err != nil {
			return nil, fmt.Errorf("training set %s: %w", path, err)
		}

		set.X = append(set.X, x)
		set.Y = append(set.Y, y)
	}

	return set, nil
}
