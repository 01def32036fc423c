package exporter

import (
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"retailcli/pkg/contracts/domain"
)

// Chart extract filenames, written next to the recommendation artifact for
// the dashboards to consume read-only.
const (
	LineChartCSV    = "line_chart_data.csv"
	DotChartCSV     = "dot_chart_data.csv"
	PieChartCSV     = "pie_chart_data.csv"
	BarChartCSV     = "bar_chart_data.csv"
	ScatterChartCSV = "scatter_chart_data.csv"
)

// WriteChartData writes the dashboard chart extracts derived from a
// recommendation run. The five files are independent, so they are written
// concurrently; any failure aborts the group.
func (w *CSVWriter) WriteChartData(dir string, predictions []domain.PredictionRow, top []domain.TopProduct) error {
	var g errgroup.Group

	g.Go(func() error {
		return w.writeLineChart(filepath.Join(dir, LineChartCSV), predictions)
	})
	g.Go(func() error {
		return w.writeDotChart(filepath.Join(dir, DotChartCSV), predictions)
	})
	g.Go(func() error {
		return w.writeTopChart(filepath.Join(dir, PieChartCSV), top)
	})
	g.Go(func() error {
		return w.writeTopChart(filepath.Join(dir, BarChartCSV), top)
	})
	g.Go(func() error {
		return w.writeScatterChart(filepath.Join(dir, ScatterChartCSV), predictions)
	})

	return g.Wait()
}

// writeLineChart sums recommended revenue per (event_date, product_name).
func (w *CSVWriter) writeLineChart(path string, predictions []domain.PredictionRow) error {
	type key struct {
		date time.Time
		name string
	}

	totals := make(map[key]float64)
	for _, p := range predictions {
		totals[key{date: p.EventDate, name: p.ProductName}] += p.Revenue
	}

	keys := make([]key, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].name < keys[j].name
	})

	records := make([][]string, 0, len(keys))
	for _, k := range keys {
		records = append(records, []string{
			k.date.Format("2006-01-02"),
			k.name,
			FormatFloat(totals[k], 2),
		})
	}

	return w.WriteSimpleCSV(path, []string{"event_date", "product_name", "revenue"}, records)
}

// writeDotChart lists predicted quantity per row.
func (w *CSVWriter) writeDotChart(path string, predictions []domain.PredictionRow) error {
	records := make([][]string, 0, len(predictions))
	for _, p := range predictions {
		records = append(records, []string{
			p.EventDate.Format("2006-01-02"),
			p.ProductName,
			FormatFloat(p.PredictedQuantity, 4),
		})
	}

	return w.WriteSimpleCSV(path, []string{"event_date", "product_name", "predicted_quantity"}, records)
}

// writeTopChart writes the top-products revenue share used by both the pie
// and bar charts.
func (w *CSVWriter) writeTopChart(path string, top []domain.TopProduct) error {
	records := make([][]string, 0, len(top))
	for _, t := range top {
		records = append(records, []string{t.ProductName, FormatFloat(t.TotalRevenue, 2)})
	}

	return w.WriteSimpleCSV(path, []string{"product_name", "total_revenue"}, records)
}

// writeScatterChart pairs average price with predicted quantity.
func (w *CSVWriter) writeScatterChart(path string, predictions []domain.PredictionRow) error {
	records := make([][]string, 0, len(predictions))
	for _, p := range predictions {
		records = append(records, []string{
			FormatFloat(p.AvgPrice, 2),
			FormatFloat(p.PredictedQuantity, 4),
			p.ProductName,
		})
	}

	return w.WriteSimpleCSV(path, []string{"avg_price", "predicted_quantity", "product_name"}, records)
}
