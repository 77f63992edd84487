// Package calibstore persists the body-specific calibration record:
// the sitting and standing hip-height references and the calibrated flag.
package calibstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record holds the two vertical references and the calibrated flag.
// Once IsCalibrated is true, the two references are guaranteed to
// differ; degenerate records are rejected before they reach the store.
type Record struct {
	SittingReferenceY  float64 `json:"sitting_reference_y"`
	StandingReferenceY float64 `json:"standing_reference_y"`
	IsCalibrated       bool    `json:"is_calibrated"`
}

// Store defines the persistence contract for calibration records.
// Implementations must tolerate Load before any Save (first run).
type Store interface {
	// Load reads the stored record. A missing record is not an error;
	// it returns a zero Record.
	Load() (Record, error)

	// Save writes the record. Called on every successful calibration
	// mutation.
	Save(rec Record) error

	// Clear deletes the stored record.
	Clear() error
}

// fileData is the JSON structure for the store file.
type fileData struct {
	Version   int    `json:"version"`
	UpdatedAt string `json:"updated_at"`
	Record    Record `json:"record"`
}

const currentVersion = 1

// JSONStore implements Store using a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed store at the given path.
// The parent directory is created if needed; the file itself is created
// on first save.
func NewJSONStore(path string) (*JSONStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

// NewDefaultStore creates a store at the default location
// (~/.repcam/calibration.json).
func NewDefaultStore() (*JSONStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewJSONStore(filepath.Join(homeDir, ".repcam", "calibration.json"))
}

// Load reads the record from disk. Returns a zero Record if the file
// does not exist yet.
func (s *JSONStore) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("failed to read file: %w", err)
	}

	var stored fileData
	if err := json.Unmarshal(data, &stored); err != nil {
		return Record{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return stored.Record, nil
}

// Save writes the record to disk.
func (s *JSONStore) Save(rec Record) error {
	stored := fileData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Record:    rec,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	// Write to temp file first, then rename (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Clear deletes the stored record. Not an error if nothing is stored.
func (s *JSONStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Path returns the file path of the store.
func (s *JSONStore) Path() string {
	return s.path
}
