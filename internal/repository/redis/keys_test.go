package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	id := uuid.MustParse("8f14e45f-ceea-467f-a1f4-3c9f1f2c3b4d")

	assert.Equal(t, "tourgo:v1:tour:8f14e45f-ceea-467f-a1f4-3c9f1f2c3b4d", KeyTour(id))
	assert.Equal(t, "tourgo:v1:rl:login", KeyRateLimit("login"))
	assert.Equal(t,
		"tourgo:v1:idem:checkout:8f14e45f-ceea-467f-a1f4-3c9f1f2c3b4d:abc",
		KeyIdemCheckout(id, "abc"),
	)
}

func TestParseWindowResult(t *testing.T) {
	ok, n, retry, err := parseWindowResult([]int64{1, 3, 0})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	assert.Zero(t, retry)

	ok, n, retry, err = parseWindowResult([]int64{0, 10, 1500})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, 1500*time.Millisecond, retry)

	_, _, _, err = parseWindowResult([]int64{1})
	assert.Error(t, err)
}

func TestLimitFor(t *testing.T) {
	l := NewSlidingWindowLimiter(nil, "api", 10, time.Minute).SetLimit("login", 5)

	assert.Equal(t, 5, l.limitFor("login:203.0.113.7"))
	assert.Equal(t, 10, l.limitFor("booking:8f14e45f"))
	assert.Equal(t, 10, l.limitFor("nocolon"))
	assert.Equal(t, "tourgo:v1:rl:api", l.prefix)
}

func TestAllow_DisabledLimitSkipsRedis(t *testing.T) {
	l := NewSlidingWindowLimiter(nil, "api", 0, time.Minute)

	ok, _, _, err := l.Allow(context.Background(), "booking:1")
	require.NoError(t, err)
	assert.True(t, ok)
}
