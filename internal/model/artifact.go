package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save persists the trained model as a JSON artifact. A later training run
// silently replaces the file; there is no versioning.
func (m *DemandModel) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	return nil
}

// Load reads a model artifact from disk and validates its shape.
func Load(path string) (*DemandModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	var m DemandModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model file %s: %w", path, err)
	}

	if len(m.FeatureNames) == 0 {
		return nil, fmt.Errorf("model file %s has no feature names", path)
	}
	if len(m.Weights) != len(m.FeatureNames) {
		return nil, fmt.Errorf("model file %s has %d weights for %d features",
			path, len(m.Weights), len(m.FeatureNames))
	}

	return &m, nil
}
