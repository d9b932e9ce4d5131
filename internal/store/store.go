// Package store provides the durable association between embedding vectors
// and their source chunks. The flat backend keeps a vector index and a
// metadata store as parallel arrays with a transactional append contract;
// the chromem and postgres backends store vector and payload together in a
// single engine.
package store

import (
	"context"
	"errors"

	"paper-rag/internal/models"
)

// ErrStoreMismatch means the vector index and metadata store disagree: an
// Add with unequal cardinalities, or persisted files whose lengths differ.
var ErrStoreMismatch = errors.New("vector index and metadata store out of sync")

// Store is written only by the ingestion pipeline and read by the
// retriever. A single ingestion writer is assumed; concurrent ingestion
// must be serialized externally.
type Store interface {
	// Add appends chunks with their vectors as one logical unit. Both
	// slices must have the same cardinality and ordering.
	Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	// Search returns the k nearest chunks by distance, ascending.
	Search(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error)
	// Len returns the number of stored vectors.
	Len(ctx context.Context) (int, error)
	// Persist flushes to durable storage. A no-op for self-persisting engines.
	Persist() error
	// Load restores from durable storage, replacing in-memory state
	// atomically. A no-op for self-persisting engines.
	Load() error
}
