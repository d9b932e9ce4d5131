// Package index implements a flat, exact-L2 vector index. Every search is a
// linear scan, which guarantees exact top-k recall; this trades scale for
// accuracy and is fine for corpora up to the low hundred-thousands of
// vectors.
package index

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
)

var (
	// ErrIndexEmpty is returned when a search runs against an index with
	// zero entries.
	ErrIndexEmpty = errors.New("vector index is empty")
	// ErrIndexNotFound is returned by Load when no index file exists.
	ErrIndexNotFound = errors.New("vector index file not found")
	// ErrIndexCorrupt is returned by Load when the index file cannot be
	// decoded.
	ErrIndexCorrupt = errors.New("vector index file is corrupt")
	// ErrDimensionMismatch is a configuration-level error: a vector's
	// dimension does not match the index. Never retried.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Hit is one nearest-neighbor result: the vector's insertion position and
// its L2 distance to the query.
type Hit struct {
	Position int
	Distance float32
}

// Flat stores vectors in insertion order. Position in the slice is the join
// key the metadata store resolves against.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Build constructs a fresh index sized to the first vector's dimension.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, errors.New("cannot build index from zero vectors")
	}
	f, err := NewFlat(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	if err := f.Add(vectors); err != nil {
		return nil, err
	}
	return f, nil
}

// Add appends vectors to the index. New vectors receive strictly increasing
// positions continuing from the current size.
func (f *Flat) Add(vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("add: got dimension %d, index has %d: %w", len(v), f.dim, ErrDimensionMismatch)
		}
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Dim returns the index's vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Search returns the k nearest neighbors of query by L2 distance, ascending.
// Ties are broken by insertion position, lower first. k larger than the
// index size is clamped.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(f.vectors) == 0 {
		return nil, ErrIndexEmpty
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("search: got dimension %d, index has %d: %w", len(query), f.dim, ErrDimensionMismatch)
	}
	if k < 1 {
		return nil, fmt.Errorf("search: k must be >= 1, got %d", k)
	}
	if k > len(f.vectors) {
		k = len(f.vectors)
	}

	// Rank by squared distance; the sqrt is monotonic and applied only to
	// the returned hits.
	sq := make([]float32, len(f.vectors))
	for i, v := range f.vectors {
		sq[i] = squaredL2(query, v)
	}
	order := make([]int, len(f.vectors))
	for i := range order {
		order[i] = i
	}
	// Stable sort keeps insertion order on equal distances.
	sort.SliceStable(order, func(a, b int) bool { return sq[order[a]] < sq[order[b]] })

	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		pos := order[i]
		hits[i] = Hit{Position: pos, Distance: float32(math.Sqrt(float64(sq[pos])))}
	}
	return hits, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

type flatState struct {
	Dim     int
	Vectors [][]float32
}

// Persist serializes the full index to path. chromem-go persists its
// collections with gob; the flat index follows the same mechanism.
func (f *Flat) Persist(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(flatState{Dim: f.dim, Vectors: f.vectors}); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return file.Close()
}

// Load deserializes an index from path. A missing file yields
// ErrIndexNotFound and an undecodable one ErrIndexCorrupt; Load never
// silently returns an empty index.
func Load(path string) (*Flat, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("load index %s: %w", path, ErrIndexNotFound)
		}
		return nil, fmt.Errorf("load index %s: %w", path, err)
	}
	defer file.Close()

	var state flatState
	if err := gob.NewDecoder(file).Decode(&state); err != nil {
		return nil, fmt.Errorf("load index %s: %v: %w", path, err, ErrIndexCorrupt)
	}
	if state.Dim <= 0 {
		return nil, fmt.Errorf("load index %s: invalid dimension %d: %w", path, state.Dim, ErrIndexCorrupt)
	}
	for _, v := range state.Vectors {
		if len(v) != state.Dim {
			return nil, fmt.Errorf("load index %s: vector/dimension disagreement: %w", path, ErrIndexCorrupt)
		}
	}
	return &Flat{dim: state.Dim, vectors: state.Vectors}, nil
}
