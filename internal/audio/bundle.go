// Package audio holds the per-track audio embedding bundle used by the
// hybrid fusion stage.
package audio

import "fmt"

// Bundle is an immutable N x D matrix of float32 embeddings with an
// id-to-row index and the model tag the vectors came from.
type Bundle struct {
	ids       []int64
	rows      map[int64]int
	data      []float32 // len(ids) * dim, row-major
	dim       int
	modelType string
}

// New builds a bundle from aligned ids and row-major vector data. The
// id vector is expected to be duplicate-free; a duplicate keeps the
// later row, matching the reverse-index construction.
func New(ids []int64, data []float32, dim int, modelType string) (*Bundle, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("audio bundle: dimension must be positive")
	}
	if len(data) != len(ids)*dim {
		return nil, fmt.Errorf("audio bundle: %d ids do not match %d values at dim %d", len(ids), len(data), dim)
	}
	rows := make(map[int64]int, len(ids))
	for i, id := range ids {
		rows[id] = i
	}
	return &Bundle{ids: ids, rows: rows, data: data, dim: dim, modelType: modelType}, nil
}

// ModelType returns the embedding model tag ("myna" or "cnn").
func (b *Bundle) ModelType() string { return b.modelType }

// Len returns the number of embedded tracks.
func (b *Bundle) Len() int { return len(b.ids) }

// Dim returns the embedding dimensionality.
func (b *Bundle) Dim() int { return b.dim }

// Contains reports whether id has an embedding row.
func (b *Bundle) Contains(id int64) bool {
	_, ok := b.rows[id]
	return ok
}

// Vector returns the embedding row for id. Callers must not mutate the
// returned slice.
func (b *Bundle) Vector(id int64) ([]float32, bool) {
	row, ok := b.rows[id]
	if !ok {
		return nil, false
	}
	return b.data[row*b.dim : (row+1)*b.dim], true
}
