// Package ratelimit adapts a sliding-window limiter to service errors.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/kirinyoku/tour-go/internal/apperr"
)

type Limiter interface {
	Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

// Check records a hit for key. It returns an apperr.RateLimited error once
// the limit is exceeded. A nil limiter or empty key allows everything.
func Check(ctx context.Context, l Limiter, key string) error {
	const op = "ratelimit.Check"

	if l == nil || key == "" {
		return nil
	}

	ok, _, retry, err := l.Allow(ctx, key)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s:%w", op, apperr.Limited(retry))
	}

	return nil
}
