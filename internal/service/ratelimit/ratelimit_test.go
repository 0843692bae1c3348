package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/tour-go/internal/apperr"
)

type stubLimiter struct {
	allowed bool
	retry   time.Duration
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, suffix string) (bool, int64, time.Duration, error) {
	s.keys = append(s.keys, suffix)
	return s.allowed, 1, s.retry, s.err
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, Check(ctx, nil, "ip:1"))

	l := &stubLimiter{allowed: true}
	require.NoError(t, Check(ctx, l, "ip:1"))
	require.NoError(t, Check(ctx, l, ""))
	assert.Equal(t, []string{"ip:1"}, l.keys)

	l = &stubLimiter{allowed: false, retry: 2 * time.Second}
	err := Check(ctx, l, "user:x")
	require.Error(t, err)
	assert.Equal(t, apperr.RateLimited, apperr.KindOf(err))
	d, _ := apperr.RetryAfter(err)
	assert.Equal(t, 2*time.Second, d)

	l = &stubLimiter{err: errors.New("redis down")}
	err = Check(ctx, l, "user:x")
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}
