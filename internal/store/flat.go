package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"paper-rag/internal/index"
	"paper-rag/internal/metastore"
	"paper-rag/internal/models"
)

// FlatStore pairs the exact-L2 flat index with a parallel metadata store.
// Position i in the index always resolves to metadata record i; Add
// enforces the pairing and Persist writes both files through a
// stage-then-rename step so a crash cannot leave them at different lengths.
type FlatStore struct {
	idx  *index.Flat
	meta *metastore.Store

	indexPath string
	metaPath  string
}

func NewFlatStore(indexPath, metaPath string) *FlatStore {
	return &FlatStore{meta: metastore.New(), indexPath: indexPath, metaPath: metaPath}
}

func (s *FlatStore) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("add: %d chunks but %d vectors: %w", len(chunks), len(vectors), ErrStoreMismatch)
	}
	if len(chunks) == 0 {
		return nil
	}

	if s.idx == nil {
		idx, err := index.Build(vectors)
		if err != nil {
			return err
		}
		s.idx = idx
	} else if err := s.idx.Add(vectors); err != nil {
		// Add is all-or-nothing, so a failure here leaves both sides
		// untouched and the pairing intact.
		return err
	}

	records := make([]models.MetadataRecord, len(chunks))
	for i, c := range chunks {
		records[i] = models.MetadataRecord{SourceFile: c.SourceFile, ChunkIndex: c.ChunkIndex, Text: c.Text}
	}
	s.meta.Append(records)
	return nil
}

func (s *FlatStore) Search(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error) {
	if s.idx == nil {
		return nil, index.ErrIndexEmpty
	}
	hits, err := s.idx.Search(vector, k)
	if err != nil {
		return nil, err
	}
	results := make([]models.RetrievedChunk, len(hits))
	for i, h := range hits {
		record, err := s.meta.Get(h.Position)
		if err != nil {
			return nil, fmt.Errorf("resolve position %d: %v: %w", h.Position, err, ErrStoreMismatch)
		}
		results[i] = models.RetrievedChunk{Chunk: record.Chunk(), Distance: h.Distance}
	}
	return results, nil
}

func (s *FlatStore) Len(ctx context.Context) (int, error) {
	if s.idx == nil {
		return 0, nil
	}
	return s.idx.Len(), nil
}

// Persist writes index and metadata to staging files first and renames both
// into place only after both writes succeeded.
func (s *FlatStore) Persist() error {
	if s.idx == nil {
		return index.ErrIndexEmpty
	}
	if err := os.MkdirAll(filepath.Dir(s.indexPath), 0o755); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.metaPath), 0o755); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}

	indexTmp := s.indexPath + ".staged"
	metaTmp := s.metaPath + ".staged"
	if err := s.idx.Persist(indexTmp); err != nil {
		return err
	}
	if err := s.meta.Persist(metaTmp); err != nil {
		os.Remove(indexTmp)
		return err
	}
	if err := os.Rename(indexTmp, s.indexPath); err != nil {
		os.Remove(metaTmp)
		return fmt.Errorf("persist store: %w", err)
	}
	if err := os.Rename(metaTmp, s.metaPath); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	return nil
}

// Load reads both files and verifies the pairing invariant before swapping
// in the new state, so readers never observe a half-loaded store. When
// exactly one of the two files exists — the state a crash between two
// separate writes leaves behind — Load reports the pairing violation
// instead of a plain not-found, so callers cannot mistake it for a fresh
// store and overwrite the surviving file.
func (s *FlatStore) Load() error {
	idx, err := index.Load(s.indexPath)
	if err != nil {
		if errors.Is(err, index.ErrIndexNotFound) && fileExists(s.metaPath) {
			return fmt.Errorf("load: index file %s missing but metadata file %s exists: %w", s.indexPath, s.metaPath, ErrStoreMismatch)
		}
		return err
	}
	meta, err := metastore.Load(s.metaPath)
	if err != nil {
		if errors.Is(err, metastore.ErrNotFound) {
			return fmt.Errorf("load: metadata file %s missing but index file %s exists: %w", s.metaPath, s.indexPath, ErrStoreMismatch)
		}
		return err
	}
	if idx.Len() != meta.Len() {
		return fmt.Errorf("load: index has %d vectors, metadata has %d records: %w", idx.Len(), meta.Len(), ErrStoreMismatch)
	}
	s.idx, s.meta = idx, meta
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
