package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vibecurator/internal/catalog"
	"vibecurator/internal/engine"
)

// TrackRecord returns one catalogue record in the tolerant source
// shape: primary keys plus an artist id basket.
func TrackRecord(id int64, name, artist, genre string, artistID int) map[string]any {
	return map[string]any{
		"id":               id,
		"song_name":        name,
		"artist":           artist,
		"genre":            genre,
		"artist_id_basket": []int{artistID},
	}
}

// WriteCatalogue writes records as a JSON array under a test temp dir
// and returns the file path.
func WriteCatalogue(t testing.TB, records []map[string]any) string {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "song_meta.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// LoadCatalogue writes records and loads them into a registry.
func LoadCatalogue(t testing.TB, records []map[string]any) *catalog.Registry {
	t.Helper()
	reg, err := catalog.Load(WriteCatalogue(t, records))
	require.NoError(t, err)
	return reg
}

// ResultBuilder provides a fluent interface for building engine results.
type ResultBuilder struct {
	res *engine.Result
}

// NewResultBuilder starts a result with the given method and a default
// seed.
func NewResultBuilder(method string) *ResultBuilder {
	return &ResultBuilder{
		res: &engine.Result{
			Seed:   engine.Seed{SongID: 1, SongName: "Test Seed", Artist: "Test Artist", Genre: "GN0100"},
			Method: method,
		},
	}
}

// WithSeed sets the seed block.
func (b *ResultBuilder) WithSeed(id int64, name, artist, genre string) *ResultBuilder {
	b.res.Seed = engine.Seed{SongID: id, SongName: name, Artist: artist, Genre: genre}
	return b
}

// WithItem appends an item; ranks follow insertion order.
func (b *ResultBuilder) WithItem(id int64, name, artist, genre string, score float64) *ResultBuilder {
	b.res.Items = append(b.res.Items, engine.Item{
		Rank:     len(b.res.Items) + 1,
		SongID:   id,
		SongName: name,
		Artist:   artist,
		Genre:    genre,
		Score:    score,
	})
	return b
}

// Build returns the constructed result.
func (b *ResultBuilder) Build() *engine.Result {
	return b.res
}
