// Package rerank applies the stage 1.5 pipeline to CF candidates:
// artist soft penalty, genre railguard, then artist hardcut.
package rerank

import (
	"sort"

	"vibecurator/internal/scoring"
)

// UnknownArtistKey buckets candidates without an artist key. They all
// compete for the same hardcut slots.
const UnknownArtistKey = "UNKNOWN"

// Params are the five re-ranking scalars.
type Params struct {
	MaxPerArtistSoft      int
	MaxPerArtistFinal     int
	PenaltyPerExtra       float64
	OffrailPenaltyGeneral float64
	OffrailPenaltySpecial float64
}

// Candidate carries one track through the pipeline. Each stage reads
// the previous stage's score and fills in its own fields.
type Candidate struct {
	SongID    int64
	ScoreCF   float64
	ArtistKey string
	MainGenre string

	ArtistPenaltySoft float64
	ScoreAfterArtist  float64
	GenrePenalty      float64
	ScoreAfterGenre   float64
	ScoreFinal        float64
}

// Apply runs the three stages in order and returns at most topK
// candidates sorted by final score, ties keeping earlier sort position.
func Apply(cands []Candidate, seedMainGenre string, topK int, p Params) []Candidate {
	if len(cands) == 0 || topK <= 0 {
		return nil
	}

	out := make([]Candidate, len(cands))
	copy(out, cands)

	applyArtistSoftPenalty(out, p)
	applyGenreRailguard(out, seedMainGenre, p)
	return applyArtistHardcut(out, topK, p)
}

// applyArtistSoftPenalty walks candidates in CF-score order and charges
// each artist's repeats beyond the soft cap a growing deduction.
func applyArtistSoftPenalty(cands []Candidate, p Params) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].ScoreCF > cands[j].ScoreCF
	})

	seen := make(map[string]int, len(cands))
	for i := range cands {
		key := artistKey(&cands[i])
		ord := seen[key]
		seen[key] = ord + 1

		penalty := 0.0
		if ord >= p.MaxPerArtistSoft {
			penalty = float64(ord-p.MaxPerArtistSoft+1) * p.PenaltyPerExtra
		}
		cands[i].ArtistPenaltySoft = penalty
		cands[i].ScoreAfterArtist = cands[i].ScoreCF - penalty
	}
}

func applyGenreRailguard(cands []Candidate, seedMainGenre string, p Params) {
	if seedMainGenre == "" {
		seedMainGenre = scoring.GroupUnknown
	}
	seedGroup := scoring.GenreGroup(seedMainGenre)
	for i := range cands {
		candGroup := scoring.GenreGroup(cands[i].MainGenre)
		penalty := scoring.RailguardPenalty(seedGroup, candGroup, p.OffrailPenaltyGeneral, p.OffrailPenaltySpecial)
		cands[i].GenrePenalty = penalty
		cands[i].ScoreAfterGenre = cands[i].ScoreAfterArtist - penalty
	}
}

// applyArtistHardcut selects greedily by post-railguard score, capping
// how many times one artist key may appear in the final list.
func applyArtistHardcut(cands []Candidate, topK int, p Params) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].ScoreAfterGenre > cands[j].ScoreAfterGenre
	})

	selected := make([]Candidate, 0, min(topK, len(cands)))
	perArtist := make(map[string]int, len(cands))
	for i := range cands {
		key := artistKey(&cands[i])
		if perArtist[key] >= p.MaxPerArtistFinal {
			continue
		}
		perArtist[key]++
		cands[i].ScoreFinal = cands[i].ScoreAfterGenre
		selected = append(selected, cands[i])
		if len(selected) >= topK {
			break
		}
	}
	return selected
}

func artistKey(c *Candidate) string {
	if c.ArtistKey == "" {
		return UnknownArtistKey
	}
	return c.ArtistKey
}
