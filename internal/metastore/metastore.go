// Package metastore keeps the per-position metadata records that run
// parallel to the vector index: record i describes the chunk behind index
// position i. Append discipline is owned by the store layer.
package metastore

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"paper-rag/internal/models"
)

var (
	// ErrNotFound is returned by Load when no metadata file exists.
	ErrNotFound = errors.New("metadata file not found")
	// ErrCorrupt is returned by Load when the metadata file cannot be decoded.
	ErrCorrupt = errors.New("metadata file is corrupt")
	// ErrOutOfRange is returned by Get for a position with no record.
	ErrOutOfRange = errors.New("metadata position out of range")
)

// Store is an append-only sequence of metadata records keyed by position.
type Store struct {
	records []models.MetadataRecord
}

func New() *Store { return &Store{} }

// Append adds records in order, continuing from the current length.
func (s *Store) Append(records []models.MetadataRecord) {
	s.records = append(s.records, records...)
}

// Get returns the record at the given vector-index position.
func (s *Store) Get(position int) (models.MetadataRecord, error) {
	if position < 0 || position >= len(s.records) {
		return models.MetadataRecord{}, fmt.Errorf("get position %d of %d: %w", position, len(s.records), ErrOutOfRange)
	}
	return s.records[position], nil
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Persist serializes all records to path.
func (s *Store) Persist(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persist metadata: %w", err)
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(s.records); err != nil {
		return fmt.Errorf("persist metadata: %w", err)
	}
	return file.Close()
}

// Load reads records from path. Missing and unreadable files are distinct,
// explicit failures; Load never falls back to an empty store.
func Load(path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load metadata %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("load metadata %s: %w", path, err)
	}
	defer file.Close()

	var records []models.MetadataRecord
	if err := gob.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("load metadata %s: %v: %w", path, err, ErrCorrupt)
	}
	return &Store{records: records}, nil
}
