package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogue(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song_meta.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ArrayForm(t *testing.T) {
	path := writeCatalogue(t, `[
		{"id": 1, "song_name": "Spring Day", "artist_name_basket": ["BTS"], "song_gn_gnr_basket": ["GN0100"], "issue_date": 20170213, "artist_id_basket": [420]},
		{"song_id": "2", "title": "Alone Again", "artist": "Solo Artist", "genre": "GN0200", "issue_year": "1999"},
		{"sid": 3, "track_name": "Duet", "artist_name_basket": ["A", "B"], "song_gn_dtl_gnr_basket": ["GN0301", "GN0302"]}
	]`)

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []int64{1, 2, 3}, reg.IDs())

	one, ok := reg.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Spring Day", one.Name)
	assert.Equal(t, "BTS", one.Artist)
	assert.Equal(t, "GN0100", one.Genre)
	assert.Equal(t, "420", one.ArtistKey)
	require.NotNil(t, one.IssueYear)
	assert.Equal(t, 2017, *one.IssueYear)

	two, ok := reg.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "Alone Again", two.Name)
	assert.Equal(t, "Solo Artist", two.Artist)
	assert.Equal(t, "GN0200", two.Genre)
	assert.Equal(t, "UNKNOWN", two.ArtistKey)
	require.NotNil(t, two.IssueYear)
	assert.Equal(t, 1999, *two.IssueYear)

	three, ok := reg.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, "A, B", three.Artist)
	assert.Equal(t, "GN0301, GN0302", three.Genre)
	assert.Equal(t, "GN0301", three.PrimaryGenre())
	assert.Nil(t, three.IssueYear)
}

func TestLoad_ObjectFormKeepsDocumentOrder(t *testing.T) {
	path := writeCatalogue(t, `{
		"b": {"id": 20, "name": "Second"},
		"a": {"id": 10, "name": "First"},
		"c": {"id": 30, "name": "Third"}
	}`)

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 10, 30}, reg.IDs())
}

func TestLoad_SingleObjectRecord(t *testing.T) {
	path := writeCatalogue(t, `{"id": 7, "name": "Lone Track", "artist": "Somebody"}`)

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	track, ok := reg.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, "Lone Track", track.Name)
}

func TestLoad_TolerantFieldEdges(t *testing.T) {
	tests := []struct {
		name   string
		record string
		verify func(t *testing.T, track *Track)
	}{
		{
			name:   "missing name defaults to Unknown",
			record: `{"id": 1, "artist": "X"}`,
			verify: func(t *testing.T, track *Track) {
				assert.Equal(t, "Unknown", track.Name)
			},
		},
		{
			name:   "empty artist basket falls back to scalar keys",
			record: `{"id": 1, "name": "T", "artist_name_basket": [], "artist_name": "Fallback"}`,
			verify: func(t *testing.T, track *Track) {
				assert.Equal(t, "Fallback", track.Artist)
			},
		},
		{
			name:   "no artist at all defaults to Unknown",
			record: `{"id": 1, "name": "T"}`,
			verify: func(t *testing.T, track *Track) {
				assert.Equal(t, "Unknown", track.Artist)
			},
		},
		{
			name:   "empty gnr basket defers to dtl basket",
			record: `{"id": 1, "song_gn_gnr_basket": [], "song_gn_dtl_gnr_basket": ["GN0501"]}`,
			verify: func(t *testing.T, track *Track) {
				assert.Equal(t, "GN0501", track.Genre)
			},
		},
		{
			name:   "no genre information yields empty string",
			record: `{"id": 1, "name": "T"}`,
			verify: func(t *testing.T, track *Track) {
				assert.Equal(t, "", track.Genre)
			},
		},
		{
			name:   "short issue_date is ignored",
			record: `{"id": 1, "issue_date": "99"}`,
			verify: func(t *testing.T, track *Track) {
				assert.Nil(t, track.IssueYear)
			},
		},
		{
			name:   "non-numeric year prefix is ignored",
			record: `{"id": 1, "issue_date": "unknown"}`,
			verify: func(t *testing.T, track *Track) {
				assert.Nil(t, track.IssueYear)
			},
		},
		{
			name:   "artists array is joined",
			record: `{"id": 1, "artists": ["X", "Y"]}`,
			verify: func(t *testing.T, track *Track) {
				assert.Equal(t, "X, Y", track.Artist)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatalogue(t, "["+tt.record+"]")
			reg, err := Load(path)
			require.NoError(t, err)

			track, ok := reg.Lookup(1)
			require.True(t, ok)
			tt.verify(t, track)
		})
	}
}

func TestLoad_DuplicateIDsKeepFirst(t *testing.T) {
	path := writeCatalogue(t, `[
		{"id": 1, "name": "Original"},
		{"id": 1, "name": "Duplicate"},
		{"id": 2, "name": "Other"}
	]`)

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	track, _ := reg.Lookup(1)
	assert.Equal(t, "Original", track.Name)
}

func TestLoad_RecordsWithoutIDAreDropped(t *testing.T) {
	path := writeCatalogue(t, `[
		{"name": "No ID"},
		{"id": "not-a-number", "name": "Bad ID"},
		{"id": 5, "name": "Good"}
	]`)

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Contains(5))
}

func TestLoad_Failures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Load(writeCatalogue(t, `{"id": `))
		require.Error(t, err)
	})

	t.Run("no usable records", func(t *testing.T) {
		_, err := Load(writeCatalogue(t, `[{"name": "no id"}]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no usable records")
	})

	t.Run("scalar top level", func(t *testing.T) {
		_, err := Load(writeCatalogue(t, `42`))
		require.Error(t, err)
	})
}

func TestLoadOrDemo(t *testing.T) {
	t.Run("demo fallback on missing file", func(t *testing.T) {
		reg, err := LoadOrDemo(filepath.Join(t.TempDir(), "absent.json"), true)
		require.NoError(t, err)
		assert.Equal(t, demoTrackCount, reg.Len())
	})

	t.Run("error without demo mode", func(t *testing.T) {
		_, err := LoadOrDemo(filepath.Join(t.TempDir(), "absent.json"), false)
		require.Error(t, err)
	})

	t.Run("real file wins over demo", func(t *testing.T) {
		path := writeCatalogue(t, `[{"id": 1, "name": "Real"}]`)
		reg, err := LoadOrDemo(path, true)
		require.NoError(t, err)
		assert.Equal(t, 1, reg.Len())
	})
}

func TestNewDemoRegistry(t *testing.T) {
	reg := NewDemoRegistry()
	assert.Equal(t, demoTrackCount, reg.Len())

	first, ok := reg.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Demo Song 1", first.Name)
	assert.Equal(t, "Demo Artist 1", first.Artist)
	assert.Equal(t, "GN0200", first.Genre)
	assert.Equal(t, "1", first.ArtistKey)
	require.NotNil(t, first.IssueYear)
	assert.Equal(t, 2021, *first.IssueYear)

	// artists and genres cycle
	track, _ := reg.Lookup(205)
	assert.Equal(t, "Demo Artist 5", track.Artist)
	assert.Equal(t, demoGenres[205%5], track.Genre)

	// ids are insertion ordered
	ids := reg.IDs()
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, int64(demoTrackCount), ids[len(ids)-1])
}

func TestSearch(t *testing.T) {
	path := writeCatalogue(t, `[
		{"id": 1, "name": "Love Poem", "artist": "IU"},
		{"id": 2, "name": "LOVE DIVE", "artist": "IVE"},
		{"id": 3, "name": "Eight", "artist": "IU"},
		{"id": 4, "name": "Hate", "artist": "Other"}
	]`)
	reg, err := Load(path)
	require.NoError(t, err)

	t.Run("case-insensitive substring over name and artist", func(t *testing.T) {
		got := reg.Search("love", 10)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(2), got[1].ID)
	})

	t.Run("artist match", func(t *testing.T) {
		got := reg.Search("iu", 10)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(3), got[1].ID)
	})

	t.Run("limit respected in insertion order", func(t *testing.T) {
		got := reg.Search("e", 2)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(2), got[1].ID)
	})

	t.Run("whitespace-only query returns nothing", func(t *testing.T) {
		assert.Empty(t, reg.Search("   ", 10))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, reg.Search("zzz", 10))
	})
}

func TestPrimaryGenre(t *testing.T) {
	assert.Equal(t, "GN0100", (&Track{Genre: "GN0100, GN0101"}).PrimaryGenre())
	assert.Equal(t, "GN0200", (&Track{Genre: "GN0200"}).PrimaryGenre())
	assert.Equal(t, "", (&Track{}).PrimaryGenre())
}

func BenchmarkSearch(b *testing.B) {
	reg := NewDemoRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.Search("demo song 42", 20)
	}
}
