// Package engine orchestrates the recommendation pipeline: CF
// retrieval over the co-listening vocabulary, the re-ranking stages,
// and hybrid fusion with audio embedding similarity.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"vibecurator/internal/audio"
	"vibecurator/internal/catalog"
	"vibecurator/internal/rerank"
	"vibecurator/internal/scoring"
	"vibecurator/internal/vocab"
)

// Error kinds handlers map onto HTTP statuses.
var (
	ErrSeedNotFound        = errors.New("seed track not found in catalogue")
	ErrSeedNotInVocabulary = errors.New("seed track unknown to collaborative filtering")
	ErrNoCandidates        = errors.New("collaborative filtering produced no candidates")
	ErrNotInitialized      = errors.New("recommendation engine not initialized")
)

// cfHeadroom is the extra neighbour count requested beyond topn to
// leave room for filtering out the seed, bad keys, and unknown ids.
const cfHeadroom = 50

// Options are the engine's frozen pipeline scalars, captured by value
// at construction.
type Options struct {
	DemoMode         bool
	CandidateTopN    int
	Stage3Candidates int
	AlphaAudio       float64
	Rerank           rerank.Params
}

// Engine computes recommendations over the startup-loaded resources.
// It is stateless per request; concurrent use is safe.
type Engine struct {
	catalog *catalog.Registry
	vocab   *vocab.Vocabulary
	audio   *audio.Bundle
	opts    Options
	alphaCF float64
}

// New builds an engine. The vocabulary and audio bundle may be nil, in
// which case the affected stages degrade (§ see Recommend).
func New(cat *catalog.Registry, voc *vocab.Vocabulary, bundle *audio.Bundle, opts Options) *Engine {
	return &Engine{
		catalog: cat,
		vocab:   voc,
		audio:   bundle,
		opts:    opts,
		alphaCF: 1 - opts.AlphaAudio,
	}
}

// Recommend returns up to k tracks similar to the seed. In demo mode
// the result is a deterministic shuffle of the catalogue. Otherwise CF
// retrieval feeds the re-ranker, then audio fusion upgrades the method
// to "hybrid" whenever any survivor has an audio score.
func (e *Engine) Recommend(ctx context.Context, seedID int64, k int) (*Result, error) {
	if e == nil || e.catalog == nil {
		return nil, ErrNotInitialized
	}
	seed, ok := e.catalog.Lookup(seedID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSeedNotFound, seedID)
	}
	if k < 0 {
		k = 0
	}

	if e.opts.DemoMode {
		return e.demoRecommend(seed, k), nil
	}

	cands, err := e.cfCandidates(seedID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	survivors := rerank.Apply(cands, seed.PrimaryGenre(), e.opts.Stage3Candidates, e.opts.Rerank)
	if len(survivors) == 0 {
		return nil, fmt.Errorf("%w: seed %d", ErrNoCandidates, seedID)
	}

	audioScores := e.audioScores(seedID, survivors)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var scored []scoredCand
	method := MethodCFOnly
	if len(audioScores) == 0 {
		scored = make([]scoredCand, len(survivors))
		for i, c := range survivors {
			scored[i] = scoredCand{id: c.SongID, score: c.ScoreFinal}
		}
	} else {
		method = MethodHybrid
		scored = e.fuseHybrid(survivors, audioScores)
	}

	return &Result{Seed: seedInfo(seed), Items: e.buildItems(scored, k), Method: method}, nil
}

type scoredCand struct {
	id    int64
	score float64
}

// demoRecommend deterministically pseudo-shuffles the catalogue by a
// seed-dependent key, so fixed (seed, k) always returns the same list.
func (e *Engine) demoRecommend(seed *catalog.Track, k int) *Result {
	ids := e.catalog.IDs()
	cands := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != seed.ID {
			cands = append(cands, id)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return demoKey(cands[i], seed.ID) < demoKey(cands[j], seed.ID)
	})

	if k > len(cands) {
		k = len(cands)
	}
	scored := make([]scoredCand, k)
	for i := 0; i < k; i++ {
		scored[i] = scoredCand{id: cands[i], score: 1.0 - 0.01*float64(i)}
	}
	return &Result{Seed: seedInfo(seed), Items: e.buildItems(scored, k), Method: MethodDemo}
}

func demoKey(id, seedID int64) int64 {
	return (id*31 + seedID) % 1_000_000
}

// cfCandidates retrieves topn catalogue-known neighbours of the seed
// from the vocabulary, skipping the seed itself and unparsable keys.
func (e *Engine) cfCandidates(seedID int64) ([]rerank.Candidate, error) {
	seedKey := strconv.FormatInt(seedID, 10)
	if e.vocab == nil || !e.vocab.Contains(seedKey) {
		return nil, fmt.Errorf("%w: %d", ErrSeedNotInVocabulary, seedID)
	}

	neighbors := e.vocab.Neighbors(seedKey, e.opts.CandidateTopN+cfHeadroom)
	cands := make([]rerank.Candidate, 0, e.opts.CandidateTopN)
	for _, n := range neighbors {
		if len(cands) >= e.opts.CandidateTopN {
			break
		}
		id, err := strconv.ParseInt(n.Key, 10, 64)
		if err != nil || id == seedID {
			continue
		}
		meta, ok := e.catalog.Lookup(id)
		if !ok {
			continue
		}
		cands = append(cands, rerank.Candidate{
			SongID:    id,
			ScoreCF:   n.Score,
			ArtistKey: meta.ArtistKey,
			MainGenre: meta.PrimaryGenre(),
		})
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: seed %d", ErrNoCandidates, seedID)
	}
	return cands, nil
}

// audioScores returns cosine similarities between the seed's embedding
// and every survivor that has one. A nil or empty map means the audio
// stage cannot contribute and the result stays cf_only.
func (e *Engine) audioScores(seedID int64, survivors []rerank.Candidate) map[int64]float64 {
	if e.audio == nil {
		return nil
	}
	seedVec, ok := e.audio.Vector(seedID)
	if !ok {
		return nil
	}

	dim := e.audio.Dim()
	rows := make([]float32, 0, len(survivors)*dim)
	covered := make([]int64, 0, len(survivors))
	for _, c := range survivors {
		vec, ok := e.audio.Vector(c.SongID)
		if !ok {
			continue
		}
		rows = append(rows, vec...)
		covered = append(covered, c.SongID)
	}
	if len(covered) == 0 {
		return nil
	}

	sims := scoring.BatchCosine(seedVec, rows, dim)
	scores := make(map[int64]float64, len(covered))
	for i, id := range covered {
		scores[id] = sims[i]
	}
	return scores
}

// fuseHybrid min-max normalizes the CF and audio score vectors over
// the survivor set and blends them with the configured audio weight.
// Survivors without an audio score enter normalization as NaN and come
// out as 0, the worst audio score.
func (e *Engine) fuseHybrid(survivors []rerank.Candidate, audioScores map[int64]float64) []scoredCand {
	cf := make([]float64, len(survivors))
	au := make([]float64, len(survivors))
	for i, c := range survivors {
		cf[i] = c.ScoreFinal
		if s, ok := audioScores[c.SongID]; ok {
			au[i] = s
		} else {
			au[i] = math.NaN()
		}
	}

	cfNorm := scoring.MinMaxNormalize(cf)
	auNorm := scoring.MinMaxNormalize(au)

	hybrid := make([]float64, len(survivors))
	floats.ScaleTo(hybrid, e.alphaCF, cfNorm)
	floats.AddScaled(hybrid, e.opts.AlphaAudio, auNorm)

	scored := make([]scoredCand, len(survivors))
	for i, c := range survivors {
		scored[i] = scoredCand{id: c.SongID, score: hybrid[i]}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

// buildItems emits the first k scored candidates, skipping ids that are
// no longer in the catalogue. Ranks stay contiguous from 1.
func (e *Engine) buildItems(scored []scoredCand, k int) []Item {
	if k > len(scored) {
		k = len(scored)
	}
	items := make([]Item, 0, k)
	for _, sc := range scored[:k] {
		meta, ok := e.catalog.Lookup(sc.id)
		if !ok {
			continue
		}
		items = append(items, Item{
			Rank:     len(items) + 1,
			SongID:   meta.ID,
			SongName: meta.Name,
			Artist:   meta.Artist,
			Genre:    meta.Genre,
			Score:    roundScore(sc.score),
		})
	}
	return items
}
