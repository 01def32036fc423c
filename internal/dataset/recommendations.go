package dataset

import (
	"fmt"
	"io"
	"strconv"

	"retailcli/internal/exporter"
	"retailcli/pkg/contracts/domain"
)

// predictionHeader extends the feature columns with the model prediction
// and optimizer outputs.
var predictionHeader = append(append([]string{}, featureHeader...),
	"predicted_quantity", "recommended_price", "revenue")

// SavePredictions writes the recommendation artifact. A run always rewrites
// the full set; rows are never mutated in place.
func SavePredictions(writer *exporter.CSVWriter, path string, rows []domain.PredictionRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := featureRecord(row.FeatureRow)
		record = append(record,
			exporter.FormatFloat(row.PredictedQuantity, 4),
			exporter.FormatFloat(row.RecommendedPrice, 2),
			exporter.FormatFloat(row.Revenue, 2),
		)
		records = append(records, record)
	}

	return writer.WriteSimpleCSV(path, predictionHeader, records)
}

// LoadPredictions reads the recommendation artifact in file order.
func LoadPredictions(path string) ([]domain.PredictionRow, error) {
	file, reader, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header == nil {
		return nil, nil
	}

	index, err := columnIndex(header, predictionHeader...)
	if err != nil {
		return nil, fmt.Errorf("recommendations %s: %w", path, err)
	}

	var rows []domain.PredictionRow
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read recommendations %s: %w", path, readErr)
		}

		featureRow, err := parseFeatureRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("recommendations %s: %w", path, err)
		}

		row := domain.PredictionRow{FeatureRow: featureRow}
		if row.PredictedQuantity, err = parseFloat(record, index, "predicted_quantity"); err != nil {
			return nil, fmt.Errorf("recommendations %s: %w", path, err)
		}
		if row.RecommendedPrice, err = parseFloat(record, index, "recommended_price"); err != nil {
			return nil, fmt.Errorf("recommendations %s: %w", path, err)
		}
		if row.Revenue, err = parseFloat(record, index, "revenue"); err != nil {
			return nil, fmt.Errorf("recommendations %s: %w", path, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// SaveTopProducts writes the top-products-by-revenue report, already sorted
// descending and truncated by the caller.
func SaveTopProducts(writer *exporter.CSVWriter, path string, rows []domain.TopProduct) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.ProductName,
			exporter.FormatFloat(row.TotalRevenue, 2),
		})
	}

	return writer.WriteSimpleCSV(path, []string{"product_name", "total_revenue"}, records)
}

// LoadTopProducts reads the top-products report in file order.
func LoadTopProducts(path string) ([]domain.TopProduct, error) {
	file, reader, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header == nil {
		return nil, nil
	}

	index, err := columnIndex(header, "product_name", "total_revenue")
	if err != nil {
		return nil, fmt.Errorf("top products %s: %w", path, err)
	}

	var rows []domain.TopProduct
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read top products %s: %w", path, readErr)
		}

		row := domain.TopProduct{ProductName: field(record, index, "product_name")}
		if row.TotalRevenue, err = parseFloat(record, index, "total_revenue"); err != nil {
			return nil, fmt.Errorf("top products %s: %w", path, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SaveElasticity writes the per-product elasticity diagnostic report.
func SaveElasticity(writer *exporter.CSVWriter, path string, rows []domain.ElasticityResult) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.ProductName,
			exporter.FormatFloat(row.PriceElasticity, 4),
			strconv.Itoa(row.Observations),
		})
	}

	return writer.WriteSimpleCSV(path, []string{"product_name", "price_elasticity", "observations"}, records)
}
