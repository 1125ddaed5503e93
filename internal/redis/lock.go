package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
//
// Badge evaluation reads earned-flags and then issues, so two instances
// evaluating the same rider concurrently could both call the external
// issuer before either records the flag. The per-rider lock keeps one
// evaluation in flight per rider across the fleet.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRiderLock attempts to acquire the lock for the given rider.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireRiderLock(ctx context.Context, rider string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:rider:%s", rider)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseRiderLock releases the lock for the given rider.
func (s *LockStore) ReleaseRiderLock(ctx context.Context, rider string) error {
	key := fmt.Sprintf("lock:rider:%s", rider)

	return s.client.Del(ctx, key).Err()
}
