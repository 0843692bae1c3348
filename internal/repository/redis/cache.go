package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrCacheUnavailable wraps redis failures so callers can fall back to the
// source of truth.
var ErrCacheUnavailable = errors.New("cache unavailable")

// Cache stores JSON documents in redis. Concurrent misses on one key share
// a single load. The shared load is detached from the caller's cancellation
// so one aborted request does not fail the others waiting on it.
type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func New(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

func (c *Cache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	if err := json.Unmarshal(b, dst); err != nil {
		// A document we cannot decode is treated as a miss and overwritten.
		return false, nil
	}

	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// Del removes keys. Missing keys are not an error.
func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Fetch returns the document at key, loading and storing it on a miss.
// Load errors are returned as is and never cached.
func Fetch[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var out T

	hit, err := c.get(ctx, key, &out)
	if err != nil || hit {
		return out, err
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)

		fresh, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		_ = c.set(loadCtx, key, fresh, ttl)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}
