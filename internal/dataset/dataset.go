// Package dataset reads and writes the pipeline's persisted CSV artifacts.
// Every artifact carries a header row; loaders resolve columns by name and
// fail when a required column is missing rather than guessing positions.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the ISO calendar date layout used by all artifacts.
const DateFormat = "2006-01-02"

// TimestampFormat is the layout for full transaction timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// openCSV opens a CSV artifact and returns the header and a reader
// positioned at the first data row. A UTF-8 BOM on the header is stripped.
func openCSV(path string) (*os.File, *csv.Reader, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return file, reader, nil, nil
	}
	if err != nil {
		file.Close()
		return nil, nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	return file, reader, header, nil
}

// columnIndex maps required column names to their positions in the header.
// Missing columns abort the load (input-validation error, no partial output).
func columnIndex(header []string, required ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return index, nil
}

// field returns the value at the named column, or "" when the record is short.
func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseFloat parses a float field, reporting the column name on failure.
func parseFloat(record []string, index map[string]int, name string) (float64, error) {
	raw := field(record, index, name)
	if raw == "" {
		return 0, fmt.Errorf("empty value for column %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse column %s: %w", name, err)
	}
	return v, nil
}

// parseInt parses an integer field, accepting a trailing decimal part
// (aggregated quantities are sometimes serialized as "8.0").
func parseInt(record []string, index map[string]int, name string) (int64, error) {
	raw := field(record, index, name)
	if raw == "" {
		return 0, fmt.Errorf("empty value for column %s", name)
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse column %s: %w", name, err)
	}
	return int64(f), nil
}

// parseDate parses an ISO calendar date field.
func parseDate(record []string, index map[string]int, name string) (time.Time, error) {
	raw := field(record, index, name)
	t, err := time.Parse(DateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse column %s: %w", name, err)
	}
	return t, nil
}
