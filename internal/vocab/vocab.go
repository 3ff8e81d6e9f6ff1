// Package vocab holds the co-listening vocabulary: for a seed key it
// answers the top-n most similar keys by cosine over the trained
// item vectors.
package vocab

import (
	"container/heap"
	"sort"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Neighbor is one similarity result.
type Neighbor struct {
	Key   string
	Score float64
}

// Vocabulary is an immutable set of keyed vectors. Rows are
// L2-normalized at construction so similarity is a plain dot product.
type Vocabulary struct {
	keys  []string
	index map[string]int
	data  []float32 // len(keys) * dim, row-major
	dim   int
}

// New builds a vocabulary from keys and their row-major vectors.
func New(keys []string, vectors []float32, dim int) (*Vocabulary, error) {
	if dim <= 0 {
		return nil, errBadShape("dimension must be positive")
	}
	if len(vectors) != len(keys)*dim {
		return nil, errBadShape("vector data does not match key count")
	}
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, dup := index[k]; dup {
			return nil, errBadShape("duplicate key " + k)
		}
		index[k] = i
	}
	v := &Vocabulary{keys: keys, index: index, data: vectors, dim: dim}
	v.normalizeRows()
	return v, nil
}

type errBadShape string

func (e errBadShape) Error() string { return "vocabulary: " + string(e) }

func (v *Vocabulary) normalizeRows() {
	for i := 0; i < len(v.keys); i++ {
		row := blas32.Vector{N: v.dim, Inc: 1, Data: v.row(i)}
		norm := blas32.Nrm2(row)
		if norm > 0 {
			blas32.Scal(1/norm, row)
		}
	}
}

func (v *Vocabulary) row(i int) []float32 {
	return v.data[i*v.dim : (i+1)*v.dim]
}

// Contains reports whether key is in the vocabulary.
func (v *Vocabulary) Contains(key string) bool {
	_, ok := v.index[key]
	return ok
}

// Len returns the number of keys.
func (v *Vocabulary) Len() int { return len(v.keys) }

// Dim returns the vector dimensionality.
func (v *Vocabulary) Dim() int { return v.dim }

// Neighbors returns up to n keys most similar to key, by decreasing
// cosine similarity, the key itself excluded. Similarities for the whole
// vocabulary come from a single matrix-vector product; selection keeps a
// bounded heap. Unknown keys return nil.
func (v *Vocabulary) Neighbors(key string, n int) []Neighbor {
	qi, ok := v.index[key]
	if !ok || n <= 0 || len(v.keys) < 2 {
		return nil
	}

	query := make([]float32, v.dim)
	copy(query, v.row(qi))

	sims := make([]float32, len(v.keys))
	a := blas32.General{Rows: len(v.keys), Cols: v.dim, Stride: v.dim, Data: v.data}
	blas32.Gemv(blas.NoTrans, 1,
		a,
		blas32.Vector{N: v.dim, Inc: 1, Data: query},
		0,
		blas32.Vector{N: len(v.keys), Inc: 1, Data: sims})

	if n > len(v.keys)-1 {
		n = len(v.keys) - 1
	}
	h := make(simHeap, 0, n+1)
	for i, s := range sims {
		if i == qi {
			continue
		}
		if len(h) < n {
			heap.Push(&h, simEntry{row: i, score: s})
			continue
		}
		if h.less(h[0], simEntry{row: i, score: s}) {
			h[0] = simEntry{row: i, score: s}
			heap.Fix(&h, 0)
		}
	}

	out := make([]Neighbor, len(h))
	sort.Slice(h, func(i, j int) bool { return h.less(h[j], h[i]) })
	for i, e := range h {
		out[i] = Neighbor{Key: v.keys[e.row], Score: float64(e.score)}
	}
	return out
}

type simEntry struct {
	row   int
	score float32
}

// simHeap is a min-heap on (score, then reversed row) so that boundary
// ties evict the larger row index first, keeping results deterministic.
type simHeap []simEntry

func (h simHeap) less(a, b simEntry) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.row > b.row
}

func (h simHeap) Len() int           { return len(h) }
func (h simHeap) Less(i, j int) bool { return h.less(h[i], h[j]) }
func (h simHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *simHeap) Push(x any) { *h = append(*h, x.(simEntry)) }

func (h *simHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
