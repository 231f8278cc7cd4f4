// Package cachemanager memoizes pure lookups, unit-expression parsing above
// all, in go-cache with per-entry TTLs.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed cache keyed by strings. Entries expire after
// their TTL.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	ItemCount() int
}

// Stats counts read-through traffic since the cache was created.
type Stats struct {
	Hits   uint64 // answered from the cache
	Misses uint64 // sent to the loader
	Shared uint64 // misses that waited on a load already in flight
	Errors uint64 // loads that failed
}
