package redis

import (
	"context"
	"time"

	"github.com/glamweave/dyebudget/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

// RedisCache is the byte KV store the price cache sits on. The price cache
// owns the key schema and the freshness model; this adapter only adds the
// deployment namespace prefix so several environments can share one Redis.
type RedisCache struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisCache wraps rdb with an optional namespace prefix.
func NewRedisCache(rdb redis.Cmdable, prefix string) *RedisCache {
	if prefix != "" {
		prefix += ":"
	}
	return &RedisCache{rdb: rdb, prefix: prefix}
}

// Get returns the stored bytes for key. A missing key is ok=false with a
// nil error so the price cache reads it as a plain miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	switch {
	case err == redis.Nil:
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return b, true, nil
}

// Set stores value under key for ttl. The price cache always passes a
// positive ttl (its stale threshold plus buffer), so entries expire
// server-side even when nothing ever reads them again.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.prefix+key).Err()
}

var _ ports.Cache = (*RedisCache)(nil)
