package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/domain"
)

// TourCache caches tour details by ID.
type TourCache struct {
	c   *Cache
	ttl time.Duration
}

func NewTourCache(c *Cache, ttl time.Duration) *TourCache {
	return &TourCache{c: c, ttl: ttl}
}

// Get returns the cached tour or loads and caches it. When redis itself
// fails the tour is loaded directly so the cache never takes reads down.
func (tc *TourCache) Get(
	ctx context.Context,
	id uuid.UUID,
	load func(ctx context.Context) (domain.Tour, error),
) (domain.Tour, error) {
	t, err := Fetch(ctx, tc.c, KeyTour(id), tc.ttl, load)
	if errors.Is(err, ErrCacheUnavailable) {
		return load(ctx)
	}
	return t, err
}

// Invalidate drops the cached detail of a tour.
func (tc *TourCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return tc.c.Del(ctx, KeyTour(id))
}
