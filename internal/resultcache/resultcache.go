// Package resultcache is the read-through store for serialized
// recommendation results. Keys carry the engine version and audio model
// tag, so changing either invalidates every prior entry without a
// flush.
package resultcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"vibecurator/internal/cache"
	"vibecurator/internal/engine"
)

// Store wraps the byte cache with the result key schema and JSON codec.
// Cache failures never surface to callers; they degrade to misses or
// dropped writes.
type Store struct {
	cache         cache.Cache
	engineVersion string
	audioModel    string
	ttl           time.Duration
}

// New builds a store writing entries with the given TTL. A TTL of zero
// stores entries without expiry.
func New(c cache.Cache, engineVersion, audioModel string, ttl time.Duration) *Store {
	return &Store{
		cache:         c,
		engineVersion: engineVersion,
		audioModel:    audioModel,
		ttl:           ttl,
	}
}

// Key builds the cache key for one (seed, k) request.
func (s *Store) Key(seedID int64, k int) string {
	return fmt.Sprintf("rec:%s:%s:seed:%d:k:%d", s.engineVersion, s.audioModel, seedID, k)
}

// Get returns the cached result for (seed, k) and whether it was found.
// Corrupt entries are deleted so they cannot wedge the key until the
// TTL runs out.
func (s *Store) Get(ctx context.Context, seedID int64, k int) (*engine.Result, bool) {
	key := s.Key(seedID, k)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Result cache read failed", "key", key, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var res engine.Result
	if err := json.Unmarshal(data, &res); err != nil {
		slog.Error("Corrupt result cache entry", "key", key, "error", err)
		s.cache.Delete(ctx, key)
		return nil, false
	}
	return &res, true
}

// Put stores a result best-effort. A cancelled request never writes.
func (s *Store) Put(ctx context.Context, seedID int64, k int, res *engine.Result) {
	if ctx.Err() != nil {
		return
	}
	key := s.Key(seedID, k)
	data, err := json.Marshal(res)
	if err != nil {
		slog.Error("Failed to marshal result for cache", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Warn("Result cache write failed", "key", key, "error", err)
	}
}

// Connected reports whether the backing cache answers a health check.
func (s *Store) Connected(ctx context.Context) bool {
	return s.cache.Health(ctx) == nil
}

// Close closes the backing cache.
func (s *Store) Close() error {
	return s.cache.Close()
}
