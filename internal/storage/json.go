package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fwtest/internal/domain"
)

// JSONStorage stores summaries in one JSON file
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that reads/writes the JSON file at path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the summary file location
func (s *JSONStorage) Path() string {
	return s.path
}

// Save writes the summary, replacing the previous one.
func (s *JSONStorage) Save(output *domain.TestResultsOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Load reads the last summary.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

var _ Storage = (*JSONStorage)(nil)
