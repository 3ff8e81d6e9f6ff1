package engine

import (
	"math"

	"vibecurator/internal/catalog"
)

// Recommendation methods, in degradation order.
const (
	MethodDemo   = "demo"
	MethodCFOnly = "cf_only"
	MethodHybrid = "hybrid"
)

// Seed describes the seed track in a response.
type Seed struct {
	SongID   int64  `json:"song_id"`
	SongName string `json:"song_name"`
	Artist   string `json:"artist"`
	Genre    string `json:"genre"`
}

// Item is one recommended track. Ranks start at 1 and are contiguous.
type Item struct {
	Rank     int     `json:"rank"`
	SongID   int64   `json:"song_id"`
	SongName string  `json:"song_name"`
	Artist   string  `json:"artist"`
	Genre    string  `json:"genre"`
	Score    float64 `json:"score"`
}

// Result is the engine's output for one recommendation request. Its
// JSON form is also the cache payload, so the field set stays stable.
type Result struct {
	Seed   Seed   `json:"seed"`
	Items  []Item `json:"items"`
	Method string `json:"method"`
}

func seedInfo(t *catalog.Track) Seed {
	return Seed{SongID: t.ID, SongName: t.Name, Artist: t.Artist, Genre: t.Genre}
}

// roundScore trims emitted scores to 6 decimals.
func roundScore(s float64) float64 {
	return math.Round(s*1e6) / 1e6
}
