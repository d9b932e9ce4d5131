package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndSearch(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 0},
		{1, 0},
		{0, 3},
	})
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())
	require.Equal(t, 2, idx.Dim())

	hits, err := idx.Search([]float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, float32(0), hits[0].Distance)
	assert.Equal(t, 0, hits[1].Position)
	assert.Equal(t, float32(1), hits[1].Distance)
}

func TestSelfMatchAfterAdd(t *testing.T) {
	idx, err := Build([][]float32{{1, 1}, {2, 2}})
	require.NoError(t, err)

	v := []float32{7, -3}
	require.NoError(t, idx.Add([][]float32{v}))

	hits, err := idx.Search(v, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Position, "added vector continues from current size")
	assert.Equal(t, float32(0), hits[0].Distance)
}

func TestSearchTiesBrokenByInsertionOrder(t *testing.T) {
	idx, err := Build([][]float32{
		{0, 1},
		{1, 0},
		{0, -1},
		{-1, 0},
	})
	require.NoError(t, err)

	// All four are at distance 1 from the origin.
	hits, err := idx.Search([]float32{0, 0}, 4)
	require.NoError(t, err)
	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.Position
	}
	assert.Equal(t, []int{0, 1, 2, 3}, positions)
}

func TestSearchClampsK(t *testing.T) {
	idx, err := Build([][]float32{{1}, {2}})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, err := NewFlat(3)
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 2, 3}, 1)
	assert.ErrorIs(t, err, ErrIndexEmpty)
}

func TestDimensionMismatch(t *testing.T) {
	idx, err := Build([][]float32{{1, 2}})
	require.NoError(t, err)

	err = idx.Add([][]float32{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = idx.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPersistLoadRoundTrip(t *testing.T) {
	idx, err := Build([][]float32{
		{0.5, 0.5},
		{1.5, -0.5},
		{-2, 4},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "index.gob")
	require.NoError(t, idx.Persist(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, idx.Len(), loaded.Len())
	require.Equal(t, idx.Dim(), loaded.Dim())

	query := []float32{0.4, 0.6}
	before, err := idx.Search(query, 3)
	require.NoError(t, err)
	after, err := loaded.Search(query, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gob"))
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrIndexCorrupt)
}
