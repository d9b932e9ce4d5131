package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-rag/internal/config"
	"paper-rag/internal/index"
	"paper-rag/internal/models"
)

func newChromemStore(t *testing.T) *ChromemStore {
	t.Helper()
	st, err := NewChromemStore(&config.ChromemConfig{Path: t.TempDir(), Collection: "test_chunks"})
	require.NoError(t, err)
	return st
}

func TestChromemStoreAddAndSearch(t *testing.T) {
	ctx := context.Background()
	st := newChromemStore(t)

	chunks := []models.Chunk{
		{SourceFile: "a.pdf", ChunkIndex: 0, Text: "alpha"},
		{SourceFile: "a.pdf", ChunkIndex: 1, Text: "beta"},
	}
	vectors := [][]float32{
		{1, 0},
		{0, 1},
	}
	require.NoError(t, st.Add(ctx, chunks, vectors))

	n, err := st.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := st.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Chunk.Text)
	assert.Equal(t, "a.pdf", results[0].Chunk.SourceFile)
	assert.Equal(t, 0, results[0].Chunk.ChunkIndex)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
}

func TestChromemStoreSearchClampsK(t *testing.T) {
	ctx := context.Background()
	st := newChromemStore(t)

	require.NoError(t, st.Add(ctx,
		[]models.Chunk{{SourceFile: "a.pdf", ChunkIndex: 0, Text: "only"}},
		[][]float32{{1, 0}},
	))

	results, err := st.Search(ctx, []float32{0.5, 0.5}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemStoreSearchEmpty(t *testing.T) {
	st := newChromemStore(t)
	_, err := st.Search(context.Background(), []float32{1, 0}, 1)
	assert.ErrorIs(t, err, index.ErrIndexEmpty)
}

func TestChromemStoreAddMismatchedCardinality(t *testing.T) {
	st := newChromemStore(t)
	err := st.Add(context.Background(), []models.Chunk{{Text: "one"}}, nil)
	assert.ErrorIs(t, err, ErrStoreMismatch)
}
