package store

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"paper-rag/internal/config"
	"paper-rag/internal/helper"
	"paper-rag/internal/index"
	"paper-rag/internal/models"
)

const chromemCompress = false

// ChromemStore keeps vector, chunk text and metadata together in a
// persistent chromem-go collection, which removes the index/metadata
// pairing failure mode entirely. chromem ranks by cosine similarity;
// results are reported as distance = 1 - similarity so callers see the
// same ascending-distance ordering as the flat store.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func NewChromemStore(cfg *config.ChromemConfig) (*ChromemStore, error) {
	if err := helper.CreateFolder(cfg.Path); err != nil {
		return nil, fmt.Errorf("create chromem folder: %w", err)
	}
	db, err := chromem.NewPersistentDB(cfg.Path, chromemCompress)
	if err != nil {
		return nil, fmt.Errorf("create chromem database: %w", err)
	}
	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create chromem collection: %w", err)
	}
	return &ChromemStore{db: db, collection: collection}, nil
}

func (s *ChromemStore) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("add: %d chunks but %d vectors: %w", len(chunks), len(vectors), ErrStoreMismatch)
	}
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("%s-%d", c.SourceFile, c.ChunkIndex),
			Content: c.Text,
			Metadata: map[string]string{
				"source_file": c.SourceFile,
				"chunk_index": strconv.Itoa(c.ChunkIndex),
			},
			Embedding: vectors[i],
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents to chromem: %w", err)
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, index.ErrIndexEmpty
	}
	if k > count {
		k = count
	}
	results, err := s.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query chromem: %w", err)
	}
	retrieved := make([]models.RetrievedChunk, len(results))
	for i, r := range results {
		chunkIndex, _ := strconv.Atoi(r.Metadata["chunk_index"])
		retrieved[i] = models.RetrievedChunk{
			Chunk: models.Chunk{
				SourceFile: r.Metadata["source_file"],
				ChunkIndex: chunkIndex,
				Text:       r.Content,
			},
			Distance: 1 - r.Similarity,
		}
	}
	return retrieved, nil
}

func (s *ChromemStore) Len(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Persist is a no-op: the persistent chromem database writes through on Add.
func (s *ChromemStore) Persist() error { return nil }

// Load is a no-op: NewPersistentDB restores the collection from disk.
func (s *ChromemStore) Load() error { return nil }
