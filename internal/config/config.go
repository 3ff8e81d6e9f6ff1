package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// Audio embedding model identifiers selectable via AUDIO_MODEL.
const (
	AudioModelMyna = "myna"
	AudioModelCNN  = "cnn"
)

// Conventional data file locations used when the corresponding
// path variable is empty and the file exists on disk.
const (
	defaultSongMetaPath      = "data/song_meta.json"
	defaultSongMetaAudioPath = "data/audio_song_meta.json"
	defaultItem2VecPath      = "data/item2vec.vec"
	defaultAudioEmbMynaPath  = "data/audio_emb_myna.npz"
	defaultAudioEmbCNNPath   = "data/audio_emb_cnn.npz"
)

// Config holds all configuration for the application
type Config struct {
	// Application settings
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	// Engine identity (part of every cache key)
	EngineVersion string `envconfig:"ENGINE_VERSION" default:"stage3_v1_myna"`
	AudioModel    string `envconfig:"AUDIO_MODEL" default:"myna"`

	// Pipeline tuning
	DefaultK              int     `envconfig:"DEFAULT_K" default:"20"`
	CandidateTopN         int     `envconfig:"CANDIDATE_TOPN" default:"200"`
	Stage3Candidates      int     `envconfig:"STAGE3_CANDIDATES" default:"200"`
	AlphaAudio            float64 `envconfig:"ALPHA_AUDIO" default:"0.3"`
	MaxPerArtistSoft      int     `envconfig:"MAX_PER_ARTIST_SOFT" default:"3"`
	MaxPerArtistFinal     int     `envconfig:"MAX_PER_ARTIST_FINAL" default:"2"`
	PenaltyPerExtra       float64 `envconfig:"PENALTY_PER_EXTRA" default:"0.05"`
	OffrailPenaltyGeneral float64 `envconfig:"OFFRAIL_PENALTY_GENERAL" default:"0.008"`
	OffrailPenaltySpecial float64 `envconfig:"OFFRAIL_PENALTY_SPECIAL" default:"0.03"`
	DemoMode              bool    `envconfig:"DEMO_MODE" default:"true"`

	// Result cache
	RedisURL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	CacheTTLSec int    `envconfig:"CACHE_TTL_SEC" default:"900"`

	// Data artifacts (empty means: use the data/ default if it exists,
	// otherwise the resource is absent and the engine degrades)
	SongMetaPath      string `envconfig:"SONG_META_PATH"`
	SongMetaAudioPath string `envconfig:"SONG_META_AUDIO_PATH"`
	Item2VecPath      string `envconfig:"ITEM2VEC_PATH"`
	AudioEmbMynaPath  string `envconfig:"AUDIO_EMB_MYNA_PATH"`
	AudioEmbCNNPath   string `envconfig:"AUDIO_EMB_CNN_PATH"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaultPaths()

	if err := cfg.applyTunablesOverlay(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configured values against their allowed ranges.
func (c *Config) Validate() error {
	if c.AudioModel != AudioModelMyna && c.AudioModel != AudioModelCNN {
		return fmt.Errorf("AUDIO_MODEL must be %q or %q, got %q", AudioModelMyna, AudioModelCNN, c.AudioModel)
	}
	if c.DefaultK < 1 || c.DefaultK > 100 {
		return fmt.Errorf("DEFAULT_K must be in [1,100], got %d", c.DefaultK)
	}
	if c.CandidateTopN < 10 {
		return fmt.Errorf("CANDIDATE_TOPN must be at least 10, got %d", c.CandidateTopN)
	}
	if c.Stage3Candidates < 10 {
		return fmt.Errorf("STAGE3_CANDIDATES must be at least 10, got %d", c.Stage3Candidates)
	}
	if c.AlphaAudio < 0 || c.AlphaAudio > 1 {
		return fmt.Errorf("ALPHA_AUDIO must be in [0,1], got %g", c.AlphaAudio)
	}
	if c.MaxPerArtistSoft < 1 {
		return fmt.Errorf("MAX_PER_ARTIST_SOFT must be at least 1, got %d", c.MaxPerArtistSoft)
	}
	if c.MaxPerArtistFinal < 1 {
		return fmt.Errorf("MAX_PER_ARTIST_FINAL must be at least 1, got %d", c.MaxPerArtistFinal)
	}
	if c.PenaltyPerExtra < 0 {
		return fmt.Errorf("PENALTY_PER_EXTRA must be non-negative, got %g", c.PenaltyPerExtra)
	}
	if c.OffrailPenaltyGeneral < 0 {
		return fmt.Errorf("OFFRAIL_PENALTY_GENERAL must be non-negative, got %g", c.OffrailPenaltyGeneral)
	}
	if c.OffrailPenaltySpecial < 0 {
		return fmt.Errorf("OFFRAIL_PENALTY_SPECIAL must be non-negative, got %g", c.OffrailPenaltySpecial)
	}
	if c.CacheTTLSec < 0 {
		return fmt.Errorf("CACHE_TTL_SEC must be non-negative, got %d", c.CacheTTLSec)
	}
	return nil
}

// AudioEmbPath returns the embedding bundle path for the configured model.
func (c *Config) AudioEmbPath() string {
	if c.AudioModel == AudioModelCNN {
		return c.AudioEmbCNNPath
	}
	return c.AudioEmbMynaPath
}

// applyDefaultPaths fills empty path variables with the conventional
// data/ locations, but only when those files actually exist.
func (c *Config) applyDefaultPaths() {
	fill := func(dst *string, fallback string) {
		if *dst != "" {
			return
		}
		if _, err := os.Stat(fallback); err == nil {
			*dst = fallback
		}
	}
	fill(&c.SongMetaPath, defaultSongMetaPath)
	fill(&c.SongMetaAudioPath, defaultSongMetaAudioPath)
	fill(&c.Item2VecPath, defaultItem2VecPath)
	fill(&c.AudioEmbMynaPath, defaultAudioEmbMynaPath)
	fill(&c.AudioEmbCNNPath, defaultAudioEmbCNNPath)
}
