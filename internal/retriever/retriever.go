// Package retriever answers queries against the vector store: embed the
// query, search for the k nearest chunks, return them in ascending-distance
// order.
package retriever

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"

	"paper-rag/internal/models"
	"paper-rag/internal/store"
)

type Retriever struct {
	embedder embeddings.Embedder
	store    store.Store
}

func New(embedder embeddings.Embedder, st store.Store) *Retriever {
	return &Retriever{embedder: embedder, store: st}
}

// Retrieve returns the k chunks nearest to query, k >= 1. An empty store
// surfaces index.ErrIndexEmpty.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("retrieve: k must be >= 1, got %d", k)
	}
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.store.Search(ctx, vector, k)
}
