package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
)

// readCSVRows reads an entire CSV file into memory. Transaction exports are
// bounded batch inputs, so the whole-file read mirrors the Excel path.
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return rows, nil
}
