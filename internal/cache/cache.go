// Package cache provides the byte-value store behind the recommendation
// result cache: a valkey/redis-backed implementation for production and
// an in-process TTL cache the server falls back to when the remote
// store is unreachable.
package cache

import (
	"context"
	"time"
)

// Cache is the operation set shared by both backends. A Get miss is
// (nil, nil), not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
	Health(ctx context.Context) error
}

// CacheError carries the failed operation and key alongside the cause.
type CacheError struct {
	Operation string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return "cache " + e.Operation + " failed for key '" + e.Key + "': " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
