// Package cache provides a redis cache for verification lookups. Every
// transfer, mint and purchase reads the whitelist, so the hot path is served
// from cache with a bounded TTL and explicit invalidation on writes.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	id "brique/pkg/domain"
)

const keyPrefix = "brique:identity:"

// VerificationCache holds the per-wallet verified flag. Cache failures
// degrade to a miss; they never fail a ledger read.
type VerificationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *VerificationCache {
	return &VerificationCache{rdb: rdb, ttl: ttl}
}

// Lookup returns (verified, true) on a cache hit.
func (c *VerificationCache) Lookup(ctx context.Context, wallet id.Address) (bool, bool) {
	raw, err := c.rdb.Get(ctx, keyPrefix+wallet.Hex()).Result()
	if err != nil {
		return false, false
	}
	return raw == "1", true
}

// Store records the verified flag for the TTL window. Best effort.
func (c *VerificationCache) Store(ctx context.Context, wallet id.Address, verified bool) {
	val := "0"
	if verified {
		val = "1"
	}
	c.rdb.Set(ctx, keyPrefix+wallet.Hex(), val, c.ttl)
}

// Invalidate drops the cached flag after a registry write. The store is the
// source of truth; the next read repopulates.
func (c *VerificationCache) Invalidate(ctx context.Context, wallet id.Address) {
	c.rdb.Del(ctx, keyPrefix+wallet.Hex())
}
