package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	// WalletCacheTTL is short because billing can change the balance at
	// any moment; the cache only absorbs read bursts on the wallet
	// endpoint.
	WalletCacheTTL = 10 * time.Second

	// GraceCacheTTL bounds how stale a cached grace check may be.
	GraceCacheTTL = 30 * time.Second
)

// Key prefixes
const (
	walletCachePrefix = "cache:wallet:"
	graceCachePrefix  = "cache:grace:"
)

// CachedWallet is a cached wallet snapshot.
type CachedWallet struct {
	DriverID string  `json:"driver_id"`
	Balance  float64 `json:"balance"`
}

// CachedGraceStatus is a cached grace-window check.
type CachedGraceStatus struct {
	DriverID       string  `json:"driver_id"`
	InGrace        bool    `json:"in_grace"`
	GraceEnded     bool    `json:"grace_ended"`
	HoursRemaining float64 `json:"hours_remaining"`
}

// GetWallet retrieves a wallet snapshot from cache.
func (s *CacheStore) GetWallet(ctx context.Context, driverID string) (*CachedWallet, error) {
	data, err := s.client.Get(ctx, walletCachePrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var wallet CachedWallet
	if err := json.Unmarshal(data, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// SetWallet stores a wallet snapshot in cache.
func (s *CacheStore) SetWallet(ctx context.Context, wallet *CachedWallet) error {
	data, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, walletCachePrefix+wallet.DriverID, data, WalletCacheTTL).Err()
}

// InvalidateWallet removes a wallet snapshot from cache. Billing calls
// this after every debit.
func (s *CacheStore) InvalidateWallet(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, walletCachePrefix+driverID).Err()
}

// GetGraceStatus retrieves a grace-window check from cache.
func (s *CacheStore) GetGraceStatus(ctx context.Context, driverID string) (*CachedGraceStatus, error) {
	data, err := s.client.Get(ctx, graceCachePrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var status CachedGraceStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetGraceStatus stores a grace-window check in cache.
func (s *CacheStore) SetGraceStatus(ctx context.Context, status *CachedGraceStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, graceCachePrefix+status.DriverID, data, GraceCacheTTL).Err()
}

// InvalidateGraceStatus removes a grace-window check from cache.
func (s *CacheStore) InvalidateGraceStatus(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, graceCachePrefix+driverID).Err()
}
