// Package cache provides a small Redis-backed cache with JSON encoding.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasirin/kasirin/pkg/metrics"
)

// ErrMiss is returned when the key does not exist.
var ErrMiss = errors.New("cache: miss")

// Cache wraps a Redis client. Values are stored as JSON.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

// New creates a cache on top of an existing Redis client.
func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get unmarshals the cached value into dest. Returns ErrMiss when absent.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues(key).Inc()
		return ErrMiss
	}
	if err != nil {
		return err
	}
	metrics.CacheHits.WithLabelValues(key).Inc()
	return json.Unmarshal(raw, dest)
}

// Set stores value under key with the given TTL. A zero TTL means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), raw, ttl).Err()
}

// Forget removes one or more keys.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.rdb.Del(ctx, full...).Err()
}

// Remember returns the cached value for key, computing and storing it via
// fn on a miss.
func (c *Cache) Remember(ctx context.Context, key string, ttl time.Duration, dest any, fn func() (any, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.Is(err, ErrMiss) {
		return err
	}
	value, err := fn()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
