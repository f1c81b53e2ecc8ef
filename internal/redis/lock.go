package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireBillingLock attempts to acquire the overtime-billing lock for the
// given driver. Returns true if the lock was acquired, false if another
// billing run already holds it. The database row locks are the
// correctness guarantee; this lock keeps concurrent runs from queueing
// on the same rows.
func (s *LockStore) AcquireBillingLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:billing:%s", driverID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseBillingLock releases the billing lock for the given driver.
func (s *LockStore) ReleaseBillingLock(ctx context.Context, driverID string) error {
	key := fmt.Sprintf("lock:billing:%s", driverID)

	return s.client.Del(ctx, key).Err()
}
