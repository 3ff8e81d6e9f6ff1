package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sbinet/npyio/npz"
)

var (
	idKeys  = []string{"song_ids", "ids", "song_id"}
	embKeys = []string{"embeddings", "emb", "audio_embeddings", "embedding"}
)

// Load reads an embedding bundle from a NumPy .npz archive. The archive
// either carries an id vector and a 2-D embedding matrix under
// conventional keys, or is a flat mapping of decimal-id keys to per-id
// vectors. Shape or dtype mismatches reject the whole bundle.
func Load(path, modelType string) (*Bundle, error) {
	if path == "" {
		return nil, fmt.Errorf("no audio embedding path configured")
	}
	f, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio bundle: %w", err)
	}
	defer f.Close()

	idKey := findKey(f.Keys(), idKeys)
	embKey := findKey(f.Keys(), embKeys)
	if idKey == "" && embKey == "" {
		return loadFlat(f, modelType)
	}
	if idKey == "" || embKey == "" {
		return nil, fmt.Errorf("audio bundle %s: found one of id/embedding arrays but not both", path)
	}

	ids, err := readInts(f, idKey)
	if err != nil {
		return nil, fmt.Errorf("audio bundle %s: %w", path, err)
	}

	embHeader := f.Header(embKey)
	shape := embHeader.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("audio bundle %s: embedding matrix must be 2-D, got shape %v", path, shape)
	}
	if shape[0] != len(ids) {
		return nil, fmt.Errorf("audio bundle %s: %d ids but %d embedding rows", path, len(ids), shape[0])
	}
	if shape[1] <= 0 {
		return nil, fmt.Errorf("audio bundle %s: zero-width embedding matrix", path)
	}
	data, err := readFloats(f, embKey)
	if err != nil {
		return nil, fmt.Errorf("audio bundle %s: %w", path, err)
	}
	return New(ids, data, shape[1], modelType)
}

// findKey matches candidates against archive keys, tolerating the .npy
// member suffix zip archives carry.
func findKey(keys []string, candidates []string) string {
	for _, want := range candidates {
		for _, k := range keys {
			if k == want || strings.TrimSuffix(k, ".npy") == want {
				return k
			}
		}
	}
	return ""
}

// loadFlat stacks per-id vectors stored under decimal-id keys, in
// archive order.
func loadFlat(f *npz.Reader, modelType string) (*Bundle, error) {
	keys := f.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("audio bundle: empty archive")
	}

	ids := make([]int64, 0, len(keys))
	dim := 0
	var data []float32
	for _, k := range keys {
		id, err := strconv.ParseInt(strings.TrimSuffix(k, ".npy"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("audio bundle: key %q is not a track id", k)
		}
		shape := f.Header(k).Descr.Shape
		if len(shape) != 1 || shape[0] <= 0 {
			return nil, fmt.Errorf("audio bundle: vector for id %d must be 1-D, got shape %v", id, shape)
		}
		if dim == 0 {
			dim = shape[0]
			data = make([]float32, 0, len(keys)*dim)
		} else if shape[0] != dim {
			return nil, fmt.Errorf("audio bundle: vector for id %d has dim %d, want %d", id, shape[0], dim)
		}
		vec, err := readFloats(f, k)
		if err != nil {
			return nil, fmt.Errorf("audio bundle: id %d: %w", id, err)
		}
		ids = append(ids, id)
		data = append(data, vec...)
	}
	return New(ids, data, dim, modelType)
}

func readInts(f *npz.Reader, key string) ([]int64, error) {
	h := f.Header(key)
	if h.Descr.Fortran {
		return nil, fmt.Errorf("array %q: fortran order is not supported", key)
	}
	switch kind(h.Descr.Type) {
	case "i8":
		var v []int64
		if err := f.Read(key, &v); err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		return v, nil
	case "i4":
		var v []int32
		if err := f.Read(key, &v); err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out, nil
	case "f8":
		var v []float64
		if err := f.Read(key, &v); err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out, nil
	case "f4":
		var v []float32
		if err := f.Read(key, &v); err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("array %q: unsupported id dtype %q", key, h.Descr.Type)
	}
}

func readFloats(f *npz.Reader, key string) ([]float32, error) {
	h := f.Header(key)
	if h.Descr.Fortran {
		return nil, fmt.Errorf("array %q: fortran order is not supported", key)
	}
	switch kind(h.Descr.Type) {
	case "f4":
		var v []float32
		if err := f.Read(key, &v); err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		return v, nil
	case "f8":
		var v []float64
		if err := f.Read(key, &v); err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("array %q: unsupported embedding dtype %q", key, h.Descr.Type)
	}
}

// kind strips the byte-order prefix from a NumPy dtype descriptor,
// "<f4" -> "f4".
func kind(descr string) string {
	return strings.TrimLeft(descr, "<>|=")
}
