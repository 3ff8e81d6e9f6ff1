package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibecurator/internal/audio"
	"vibecurator/internal/cache"
	"vibecurator/internal/catalog"
	"vibecurator/internal/vocab"
)

// HealthState is everything the health document reports on: engine
// identity, the startup-loaded resources, and the cache connection.
// Resource fields are nil when loading failed or was skipped.
type HealthState struct {
	EngineVersion string
	AudioModel    string
	DemoMode      bool

	Catalog   *catalog.Registry
	AudioMeta *catalog.Registry
	Vocab     *vocab.Vocabulary
	Bundle    *audio.Bundle
	Cache     cache.Cache
}

// HealthResponse is the health document.
type HealthResponse struct {
	Status          string  `json:"status"`
	EngineVersion   string  `json:"engine_version"`
	AudioModel      string  `json:"audio_model"`
	DemoMode        bool    `json:"demo_mode"`
	MetaFullLoaded  bool    `json:"meta_full_loaded"`
	MetaFullCount   int     `json:"meta_full_count"`
	MetaAudioLoaded bool    `json:"meta_audio_loaded"`
	MetaAudioCount  int     `json:"meta_audio_count"`
	Item2VecLoaded  bool    `json:"item2vec_loaded"`
	AudioLoaded     bool    `json:"audio_loaded"`
	AudioModelType  *string `json:"audio_model_type"`
	RedisConnected  bool    `json:"redis_connected"`
}

// HealthHandler reports service and resource status.
type HealthHandler struct {
	state HealthState
}

// NewHealthHandler creates a health handler over the startup state.
func NewHealthHandler(state HealthState) *HealthHandler {
	return &HealthHandler{state: state}
}

// Check handles GET /health. It always answers 200; status "degraded"
// means the catalogue is missing and recommendations cannot run.
func (h *HealthHandler) Check(c *gin.Context) {
	s := h.state

	resp := HealthResponse{
		Status:        "ok",
		EngineVersion: s.EngineVersion,
		AudioModel:    s.AudioModel,
		DemoMode:      s.DemoMode,
	}

	if s.Catalog != nil {
		resp.MetaFullLoaded = true
		resp.MetaFullCount = s.Catalog.Len()
	} else {
		resp.Status = "degraded"
	}

	if s.AudioMeta != nil {
		resp.MetaAudioLoaded = true
		resp.MetaAudioCount = s.AudioMeta.Len()
	}

	resp.Item2VecLoaded = s.Vocab != nil

	if s.Bundle != nil {
		resp.AudioLoaded = true
		modelType := s.Bundle.ModelType()
		resp.AudioModelType = &modelType
	}

	if s.Cache != nil {
		resp.RedisConnected = s.Cache.Health(c.Request.Context()) == nil
	}

	c.JSON(http.StatusOK, resp)
}
