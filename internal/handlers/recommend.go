package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vibecurator/internal/engine"
	"vibecurator/internal/metrics"
	"vibecurator/internal/resultcache"
)

// RecommendResponse wraps an engine result with the engine identity
// and cache provenance.
type RecommendResponse struct {
	EngineVersion string        `json:"engine_version"`
	AudioModel    string        `json:"audio_model"`
	Cached        bool          `json:"cached"`
	Method        string        `json:"method"`
	Seed          engine.Seed   `json:"seed"`
	Items         []engine.Item `json:"items"`
}

// RecommendHandler serves recommendations with a cache-first read
// through the result store.
type RecommendHandler struct {
	engine        *engine.Engine
	results       *resultcache.Store
	engineVersion string
	audioModel    string
	defaultK      int
}

// NewRecommendHandler creates a recommend handler. The engine may be
// nil when the catalogue never loaded; requests then answer 503. A nil
// store disables caching.
func NewRecommendHandler(eng *engine.Engine, results *resultcache.Store, engineVersion, audioModel string, defaultK int) *RecommendHandler {
	return &RecommendHandler{
		engine:        eng,
		results:       results,
		engineVersion: engineVersion,
		audioModel:    audioModel,
		defaultK:      defaultK,
	}
}

// Recommend handles GET /recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	seedID, err := strconv.ParseInt(c.Query("seed_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "seed_id must be an integer",
		})
		return
	}

	k := h.defaultK
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "k must be an integer",
			})
			return
		}
		if n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "k must be between 1 and 100",
			})
			return
		}
		k = n
	}

	if h.engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Recommendation engine not initialized",
		})
		return
	}

	ctx := c.Request.Context()
	start := time.Now()

	if h.results != nil {
		if res, ok := h.results.Get(ctx, seedID, k); ok {
			metrics.CacheHit()
			metrics.ObserveRecommend(res.Method, true, time.Since(start))
			c.JSON(http.StatusOK, h.response(res, true))
			return
		}
		metrics.CacheMiss()
	}

	res, err := h.engine.Recommend(ctx, seedID, k)
	if err != nil {
		h.renderError(c, seedID, err)
		return
	}

	if h.results != nil {
		h.results.Put(ctx, seedID, k, res)
	}
	metrics.ObserveRecommend(res.Method, false, time.Since(start))
	c.JSON(http.StatusOK, h.response(res, false))
}

func (h *RecommendHandler) response(res *engine.Result, cached bool) RecommendResponse {
	return RecommendResponse{
		EngineVersion: h.engineVersion,
		AudioModel:    h.audioModel,
		Cached:        cached,
		Method:        res.Method,
		Seed:          res.Seed,
		Items:         res.Items,
	}
}

// renderError maps engine errors onto the HTTP statuses clients key on:
// unknown seeds are 404, missing resources are 503, everything else is
// a logged 500 with a generic body.
func (h *RecommendHandler) renderError(c *gin.Context, seedID int64, err error) {
	switch {
	case errors.Is(err, engine.ErrSeedNotFound), errors.Is(err, engine.ErrSeedNotInVocabulary):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrNoCandidates), errors.Is(err, engine.ErrNotInitialized):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		slog.Error("Recommendation failed", "seed_id", seedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
