// Package index provides an exact nearest-neighbour index over fixed-width vectors.
package index

import (
	"fmt"
	"sort"
)

// Hit is a single neighbour: its insertion position and squared L2 distance.
type Hit struct {
	Pos      int
	Distance float64
}

// Flat is an exact L2 index. Vectors are stored contiguously in insertion order.
// A Flat is not safe for concurrent mutation; callers build it once and publish it.
type Flat struct {
	dim  int
	data []float32
}

// Build creates an index holding vecs in order.
func Build(dim int, vecs [][]float32) (*Flat, error) {
	f := &Flat{dim: dim, data: make([]float32, 0, dim*len(vecs))}
	for i, v := range vecs {
		if err := f.Add(v); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
	}
	return f, nil
}

// Dim returns the vector width.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	if f.dim == 0 {
		return 0
	}
	return len(f.data) / f.dim
}

// Add appends a vector.
func (f *Flat) Add(v []float32) error {
	if len(v) != f.dim {
		return fmt.Errorf("expected %d dimensions, got %d", f.dim, len(v))
	}
	f.data = append(f.data, v...)
	return nil
}

// Search returns up to k neighbours of q ordered by ascending squared L2 distance.
// Ties keep insertion order.
func (f *Flat) Search(q []float32, k int) ([]Hit, error) {
	if len(q) != f.dim {
		return nil, fmt.Errorf("expected %d dimensions, got %d", f.dim, len(q))
	}
	n := f.Len()
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = Hit{Pos: i, Distance: l2(q, f.data[i*f.dim:(i+1)*f.dim])}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits[:k], nil
}

// l2 is the squared euclidean distance, matching IndexFlatL2 semantics.
func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
