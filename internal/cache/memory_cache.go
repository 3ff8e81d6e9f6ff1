package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache is the in-process fallback backend, used when the remote
// cache is unreachable and in tests. Entries expire by wall clock and a
// background reaper reclaims them; reads do not extend an entry's life.
type MemoryCache struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryCache starts an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	items := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()
	return &MemoryCache{items: items}
}

// Get returns (nil, nil) for missing or expired keys.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	item := c.items.Get(key)
	if item == nil {
		return nil, nil
	}
	return item.Value(), nil
}

// Set stores a value. A positive expiration becomes the entry's TTL;
// zero or negative stores without one.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	ttl := expiration
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	return c.items.Has(key), nil
}

// Close stops the expiration reaper.
func (c *MemoryCache) Close() error {
	c.items.Stop()
	return nil
}

// Health always succeeds; the in-process cache cannot disconnect.
func (c *MemoryCache) Health(ctx context.Context) error {
	return nil
}
