package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles rider statistics caching in Redis.
//
// Statistics are read far more often than they change (reporting, badge
// previews), so a short TTL plus write-through invalidation on every
// verified ride keeps reads cheap without serving stale totals.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// StatsCacheTTL bounds staleness if an invalidation is ever lost.
const StatsCacheTTL = 30 * time.Second

const statsCachePrefix = "cache:stats:"

// CachedStats represents cached rider statistics.
type CachedStats struct {
	Rider         string `json:"rider"`
	RidesVerified int64  `json:"rides_verified"`
	TotalDistance int64  `json:"total_distance"`
	TotalRewards  int64  `json:"total_rewards"`
}

// GetStats retrieves a rider's statistics from cache.
// Returns (nil, nil) on cache miss.
func (s *CacheStore) GetStats(ctx context.Context, rider string) (*CachedStats, error) {
	key := statsCachePrefix + rider
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var stats CachedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetStats stores a rider's statistics in cache.
func (s *CacheStore) SetStats(ctx context.Context, stats *CachedStats) error {
	key := statsCachePrefix + stats.Rider
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, StatsCacheTTL).Err()
}

// InvalidateStats removes a rider's statistics from cache.
func (s *CacheStore) InvalidateStats(ctx context.Context, rider string) error {
	key := statsCachePrefix + rider
	return s.client.Del(ctx, key).Err()
}
