// Command server runs the VibeCurator recommendation API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"vibecurator/internal/audio"
	"vibecurator/internal/cache"
	"vibecurator/internal/catalog"
	"vibecurator/internal/config"
	"vibecurator/internal/engine"
	"vibecurator/internal/handlers"
	"vibecurator/internal/rerank"
	"vibecurator/internal/resultcache"
	"vibecurator/internal/vocab"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("VibeCurator backend starting",
		"engine_version", cfg.EngineVersion,
		"audio_model", cfg.AudioModel,
		"demo_mode", cfg.DemoMode)

	res, err := loadResources(cfg)
	if err != nil {
		slog.Error("Failed to load catalogue", "error", err)
		os.Exit(1)
	}

	// Result cache backend: Valkey, or the in-process cache when the
	// server is unreachable.
	backendName := "valkey"
	backend, err := cache.NewValkeyCache(cfg.RedisURL)
	if err != nil {
		slog.Warn("Valkey unavailable, using in-memory result cache",
			"url", cfg.RedisURL, "error", err)
		backendName = "memory"
		backend = cache.NewMemoryCache()
	}
	store := resultcache.New(backend, cfg.EngineVersion, cfg.AudioModel,
		time.Duration(cfg.CacheTTLSec)*time.Second)

	var eng *engine.Engine
	if res.catalog != nil {
		eng = engine.New(res.catalog, res.vocab, res.bundle, engine.Options{
			DemoMode:         cfg.DemoMode,
			CandidateTopN:    cfg.CandidateTopN,
			Stage3Candidates: cfg.Stage3Candidates,
			AlphaAudio:       cfg.AlphaAudio,
			Rerank: rerank.Params{
				MaxPerArtistSoft:      cfg.MaxPerArtistSoft,
				MaxPerArtistFinal:     cfg.MaxPerArtistFinal,
				PenaltyPerExtra:       cfg.PenaltyPerExtra,
				OffrailPenaltyGeneral: cfg.OffrailPenaltyGeneral,
				OffrailPenaltySpecial: cfg.OffrailPenaltySpecial,
			},
		})
	}

	gin.SetMode(cfg.GinMode)
	router := handlers.NewRouter(
		handlers.NewHealthHandler(handlers.HealthState{
			EngineVersion: cfg.EngineVersion,
			AudioModel:    cfg.AudioModel,
			DemoMode:      cfg.DemoMode,
			Catalog:       res.catalog,
			AudioMeta:     res.audioMeta,
			Vocab:         res.vocab,
			Bundle:        res.bundle,
			Cache:         backend,
		}),
		handlers.NewSongHandler(res.catalog),
		handlers.NewRecommendHandler(eng, store, cfg.EngineVersion, cfg.AudioModel, cfg.DefaultK),
	)

	modelType := ""
	if res.bundle != nil {
		modelType = res.bundle.ModelType()
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	cacheUp := store.Connected(pingCtx)
	cancelPing()
	slog.Info("VibeCurator backend ready",
		"port", cfg.Port,
		"tracks", res.catalog.Len(),
		"item2vec_loaded", res.vocab != nil,
		"audio_loaded", res.bundle != nil,
		"audio_model_type", modelType,
		"cache_backend", backendName,
		"cache_connected", cacheUp,
		"demo_mode", cfg.DemoMode)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
	if err := store.Close(); err != nil {
		slog.Warn("Closing result cache failed", "error", err)
	}
	slog.Info("VibeCurator backend stopped")
}

// resources are the startup-loaded read-only inputs.
type resources struct {
	catalog   *catalog.Registry
	audioMeta *catalog.Registry
	vocab     *vocab.Vocabulary
	bundle    *audio.Bundle
}

// loadResources loads the data artifacts concurrently. Only the main
// catalogue may fail the process; the optional resources log their
// absence and stay nil, degrading the pipeline.
func loadResources(cfg *config.Config) (*resources, error) {
	res := &resources{}
	var g errgroup.Group

	g.Go(func() error {
		reg, err := catalog.LoadOrDemo(cfg.SongMetaPath, cfg.DemoMode)
		if err != nil {
			return err
		}
		res.catalog = reg
		slog.Info("Catalogue loaded", "tracks", reg.Len())
		return nil
	})

	g.Go(func() error {
		if cfg.SongMetaAudioPath == "" {
			return nil
		}
		reg, err := catalog.Load(cfg.SongMetaAudioPath)
		if err != nil {
			slog.Warn("Audio metadata unavailable", "path", cfg.SongMetaAudioPath, "error", err)
			return nil
		}
		res.audioMeta = reg
		slog.Info("Audio metadata loaded", "tracks", reg.Len())
		return nil
	})

	g.Go(func() error {
		if cfg.Item2VecPath == "" {
			slog.Warn("No item2vec vocabulary configured")
			return nil
		}
		voc, err := vocab.Load(cfg.Item2VecPath)
		if err != nil {
			slog.Error("Item2vec vocabulary unavailable", "path", cfg.Item2VecPath, "error", err)
			return nil
		}
		res.vocab = voc
		slog.Info("Item2vec vocabulary loaded", "keys", voc.Len(), "dim", voc.Dim())
		return nil
	})

	g.Go(func() error {
		path := cfg.AudioEmbPath()
		if path == "" {
			slog.Warn("No audio embedding bundle configured", "audio_model", cfg.AudioModel)
			return nil
		}
		bundle, err := audio.Load(path, cfg.AudioModel)
		if err != nil {
			slog.Error("Audio embedding bundle unavailable", "path", path, "error", err)
			return nil
		}
		res.bundle = bundle
		slog.Info("Audio embeddings loaded",
			"tracks", bundle.Len(), "dim", bundle.Dim(), "model_type", bundle.ModelType())
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
