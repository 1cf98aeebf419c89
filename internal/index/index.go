// Package index implements a flat in-memory vector index over document
// chunks with exhaustive squared-L2 nearest-neighbour search.
package index

import (
	"fmt"
	"sort"

	"github.com/haulware/loadlens/internal/domain"
)

// Index holds embedded chunks. It is immutable after Build; concurrent
// readers need no synchronization.
type Index struct {
	entries []Entry
	dim     int
}

// Entry pairs a chunk with its embedding vector.
type Entry struct {
	Chunk     domain.Chunk
	Embedding []float32
}

// Build creates an index from embedded entries. All vectors must share
// the same dimensionality.
func Build(entries []Entry) (*Index, error) {
	if len(entries) == 0 {
		return &Index{}, nil
	}
	dim := len(entries[0].Embedding)
	for i, e := range entries {
		if len(e.Embedding) != dim {
			return nil, fmt.Errorf("entry %d: dimension mismatch: got %d, want %d", i, len(e.Embedding), dim)
		}
	}
	return &Index{entries: entries, dim: dim}, nil
}

// Len returns the number of indexed chunks.
func (x *Index) Len() int { return len(x.entries) }

// Dimensions returns the vector dimensionality, 0 for an empty index.
func (x *Index) Dimensions() int { return x.dim }

// Entries returns the indexed entries, in insertion order.
func (x *Index) Entries() []Entry { return x.entries }

// Search returns up to k hits ordered by increasing squared-L2 distance
// from the query vector.
func (x *Index) Search(vector []float32, k int) ([]domain.Retrieved, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(x.entries) > 0 && len(vector) != x.dim {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(vector), x.dim)
	}

	hits := make([]domain.Retrieved, 0, len(x.entries))
	for _, e := range x.entries {
		hits = append(hits, domain.Retrieved{
			Chunk:    e.Chunk,
			Distance: sqDistance(vector, e.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func sqDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
