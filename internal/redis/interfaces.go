package redis

import (
	"context"
	"time"
)

// CacheStoreInterface defines the interface for rider statistics caching.
type CacheStoreInterface interface {
	GetStats(ctx context.Context, rider string) (*CachedStats, error)
	SetStats(ctx context.Context, stats *CachedStats) error
	InvalidateStats(ctx context.Context, rider string) error
}

// LockStoreInterface defines the interface for per-rider serialization
// across instances.
type LockStoreInterface interface {
	AcquireRiderLock(ctx context.Context, rider string, ttl time.Duration) (bool, error)
	ReleaseRiderLock(ctx context.Context, rider string) error
}

// Ensure concrete types implement interfaces.
var (
	_ CacheStoreInterface = (*CacheStore)(nil)
	_ LockStoreInterface  = (*LockStore)(nil)
)
