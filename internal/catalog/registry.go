package catalog

import "strings"

// Track is one catalogue record. Registries own their tracks; callers
// treat the pointers they receive as read-only.
type Track struct {
	ID        int64
	Name      string
	Artist    string
	Genre     string // full genre code list joined with ", "
	ArtistKey string
	IssueYear *int
}

// PrimaryGenre returns the first genre code of a possibly joined list.
func (t *Track) PrimaryGenre() string {
	return primaryToken(t.Genre)
}

type searchEntry struct {
	id   int64
	text string
}

// Registry is the immutable in-memory catalogue: id lookup, ids in
// insertion order, and a normalized substring search index.
type Registry struct {
	tracks map[int64]*Track
	ids    []int64
	search []searchEntry
}

func newRegistry(sizeHint int) *Registry {
	return &Registry{
		tracks: make(map[int64]*Track, sizeHint),
		ids:    make([]int64, 0, sizeHint),
		search: make([]searchEntry, 0, sizeHint),
	}
}

// add inserts a track, returning false when the id is already present.
func (r *Registry) add(t *Track) bool {
	if _, dup := r.tracks[t.ID]; dup {
		return false
	}
	r.tracks[t.ID] = t
	r.ids = append(r.ids, t.ID)
	r.search = append(r.search, searchEntry{id: t.ID, text: Normalize(t.Name + " " + t.Artist)})
	return true
}

// Lookup returns the track for id, if any.
func (r *Registry) Lookup(id int64) (*Track, bool) {
	t, ok := r.tracks[id]
	return t, ok
}

// Contains reports whether id is in the catalogue.
func (r *Registry) Contains(id int64) bool {
	_, ok := r.tracks[id]
	return ok
}

// IDs returns all track ids in insertion order. Callers must not mutate
// the returned slice.
func (r *Registry) IDs() []int64 {
	return r.ids
}

// Len returns the number of tracks.
func (r *Registry) Len() int {
	return len(r.tracks)
}

// Search scans the index in insertion order and returns up to limit
// tracks whose normalized name+artist text contains the normalized query.
func (r *Registry) Search(query string, limit int) []*Track {
	needle := Normalize(query)
	if needle == "" || limit <= 0 {
		return nil
	}
	out := make([]*Track, 0, limit)
	for _, e := range r.search {
		if strings.Contains(e.text, needle) {
			out = append(out, r.tracks[e.id])
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Normalize lowercases and trims text the way the search index stores it.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func primaryToken(genre string) string {
	if i := strings.Index(genre, ", "); i >= 0 {
		return genre[:i]
	}
	return genre
}
