// Package cache is a small JSON cache over Redis with one invalidation key
// per entity collection. Mutations must invalidate through the same keys so
// stale-read windows never outlast one re-fetch cycle.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Collection keys. Every cached read and every invalidation goes through one
// of these.
const (
	KeyItems      = "catalog:items"
	KeyCategories = "catalog:categories"
)

type Cache struct {
	rdb *redis.Client
}

// New connects to Redis at addr. An empty addr or failed ping returns a
// nil-client cache whose operations all no-op, so callers never branch on
// availability.
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		return &Cache{}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return &Cache{}, err
	}
	return &Cache{rdb: rdb}, nil
}

// Get unmarshals the cached value into dest and reports a hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Invalidate drops one or more collection keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
