package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const demoTrackCount = 5000

var demoGenres = []string{"GN0100", "GN0200", "GN0300", "GN0400", "GN0500"}

// Load reads a catalogue from a JSON file. The document may be an array
// of records, an object whose values are all records (document order
// preserved), or a single record object. Records are parsed tolerantly;
// ones without an integer id are dropped, duplicate ids keep the first
// occurrence. An unreadable file or a catalogue with zero usable records
// is an error.
func Load(path string) (*Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("no catalogue path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue: %w", err)
	}
	records, err := recordList(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalogue %s: %w", path, err)
	}

	reg := newRegistry(len(records))
	dropped := 0
	for _, raw := range records {
		track, ok := parseTrack(raw)
		if !ok {
			dropped++
			continue
		}
		if !reg.add(track) {
			slog.Debug("duplicate track id skipped", "song_id", track.ID)
		}
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("catalogue %s contains no usable records", path)
	}
	if dropped > 0 {
		slog.Warn("catalogue records dropped", "path", path, "dropped", dropped, "loaded", reg.Len())
	}
	return reg, nil
}

// LoadOrDemo loads the catalogue, falling back to the synthetic demo
// catalogue when demo mode is on and the file cannot be used.
func LoadOrDemo(path string, demoMode bool) (*Registry, error) {
	reg, err := Load(path)
	if err == nil {
		return reg, nil
	}
	if !demoMode {
		return nil, err
	}
	slog.Warn("catalogue unavailable, generating demo catalogue", "path", path, "error", err)
	return NewDemoRegistry(), nil
}

// NewDemoRegistry builds the synthetic demo catalogue: 5000 tracks over
// 100 artists with genre codes cycling through five groups.
func NewDemoRegistry() *Registry {
	reg := newRegistry(demoTrackCount)
	for i := 1; i <= demoTrackCount; i++ {
		year := 2020 + i%5
		reg.add(&Track{
			ID:        int64(i),
			Name:      fmt.Sprintf("Demo Song %d", i),
			Artist:    fmt.Sprintf("Demo Artist %d", i%100),
			Genre:     demoGenres[i%len(demoGenres)],
			ArtistKey: strconv.Itoa(i % 100),
			IssueYear: &year,
		})
	}
	return reg
}

// recordList extracts the record objects from the raw document in
// document order. json.Decoder tokens keep object-form catalogues
// ordered, which a plain map unmarshal would lose.
func recordList(data []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("top-level value must be an array or object")
	}

	switch delim {
	case '[':
		var records []map[string]any
		for dec.More() {
			var rec map[string]any
			if err := dec.Decode(&rec); err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		return records, nil
	case '{':
		var keys []string
		var values []json.RawMessage
		allObjects := true
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, err
			}
			keys = append(keys, fmt.Sprint(keyTok))
			values = append(values, raw)
			if !startsWithObject(raw) {
				allObjects = false
			}
		}
		if len(values) > 0 && allObjects {
			records := make([]map[string]any, 0, len(values))
			for _, raw := range values {
				rec, err := decodeRecord(raw)
				if err != nil {
					return nil, err
				}
				records = append(records, rec)
			}
			return records, nil
		}
		// otherwise the whole object is a single record
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		return []map[string]any{rec}, nil
	default:
		return nil, fmt.Errorf("unexpected top-level delimiter %q", delim)
	}
}

func decodeRecord(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func startsWithObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// parseTrack applies the tolerant field lookup to one raw record.
func parseTrack(rec map[string]any) (*Track, bool) {
	id, ok := extractID(rec)
	if !ok {
		return nil, false
	}
	return &Track{
		ID:        id,
		Name:      extractString(rec, []string{"song_name", "title", "name", "track_name"}, "Unknown"),
		Artist:    extractArtist(rec),
		Genre:     extractGenre(rec),
		ArtistKey: extractArtistKey(rec),
		IssueYear: extractYear(rec),
	}, true
}

func extractID(rec map[string]any) (int64, bool) {
	for _, key := range []string{"id", "song_id", "sid"} {
		v, present := rec[key]
		if !present || v == nil {
			continue
		}
		if id, ok := asInt64(v); ok {
			return id, true
		}
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	case float64:
		return int64(n), true
	}
	return 0, false
}

func extractArtist(rec map[string]any) string {
	if basket, ok := rec["artist_name_basket"].([]any); ok && len(basket) > 0 {
		return joinValues(basket)
	}
	return extractString(rec, []string{"artist", "artist_name", "artists"}, "Unknown")
}

func extractGenre(rec map[string]any) string {
	basket := rec["song_gn_gnr_basket"]
	if isEmptyValue(basket) {
		basket = rec["song_gn_dtl_gnr_basket"]
	}
	switch v := basket.(type) {
	case []any:
		if len(v) > 0 {
			return joinValues(v)
		}
	case string:
		if v != "" {
			return v
		}
	case json.Number:
		return v.String()
	}
	return extractString(rec, []string{"genre", "genres"}, "")
}

func extractArtistKey(rec map[string]any) string {
	if basket, ok := rec["artist_id_basket"].([]any); ok && len(basket) > 0 {
		if s := stringify(basket[0]); s != "" {
			return s
		}
	}
	return "UNKNOWN"
}

func extractYear(rec map[string]any) *int {
	for _, key := range []string{"issue_date", "issue_year"} {
		v, present := rec[key]
		if !present || isEmptyValue(v) {
			continue
		}
		s := strings.TrimSpace(stringify(v))
		if len(s) < 4 {
			continue
		}
		year, err := strconv.Atoi(s[:4])
		if err != nil {
			continue
		}
		return &year
	}
	return nil
}

// extractString returns the first usable value among keys: arrays are
// joined with ", ", scalars stringified; empty results fall through to
// the next key, then to the default.
func extractString(rec map[string]any, keys []string, def string) string {
	for _, key := range keys {
		v, present := rec[key]
		if !present || v == nil {
			continue
		}
		if list, ok := v.([]any); ok {
			if joined := joinValues(list); joined != "" {
				return joined
			}
			continue
		}
		if s := strings.TrimSpace(stringify(v)); s != "" {
			return s
		}
	}
	return def
}

func joinValues(list []any) string {
	parts := make([]string, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		parts = append(parts, stringify(v))
	}
	return strings.Join(parts, ", ")
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}
