package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set of hit timestamps.
// KEYS[1] = key
// ARGV[1] = now_ms
// ARGV[2] = window_ms
// ARGV[3] = limit
// ARGV[4] = member (unique per hit)
//
// Returns {allowed, count, retry_ms}. Rejected hits are not recorded, so a
// client that keeps retrying does not extend its own ban.
const luaSlidingWindow = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)

if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local score = tonumber(oldest[2]) or now
  local retry = window - (now - score)
  if retry < 0 then retry = 0 end
  return {0, count, retry}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`

// SlidingWindowLimiter allows at most limit hits per window for each key
// suffix. Suffixes look like "<action>:<subject>", e.g. "login:203.0.113.7";
// actions can be given their own limit with SetLimit.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	script *redis.Script

	perAction map[string]int
}

// NewSlidingWindowLimiter returns a limiter whose keys live under the rate
// limit namespace of scope.
func NewSlidingWindowLimiter(
	rdb *redis.Client,
	scope string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:       rdb,
		prefix:    KeyRateLimit(scope),
		limit:     limit,
		window:    window,
		script:    redis.NewScript(luaSlidingWindow),
		perAction: map[string]int{},
	}
}

// SetLimit overrides the limit for suffixes starting with action. It must be
// called before the limiter is shared.
func (l *SlidingWindowLimiter) SetLimit(action string, limit int) *SlidingWindowLimiter {
	l.perAction[action] = limit
	return l
}

func (l *SlidingWindowLimiter) limitFor(suffix string) int {
	action, _, _ := strings.Cut(suffix, ":")
	if n, ok := l.perAction[action]; ok {
		return n
	}
	return l.limit
}

// Allow records a hit for suffix and reports whether it is within the limit.
// A limit of zero or less disables limiting.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error) {
	limit := l.limitFor(suffix)
	if limit <= 0 {
		return true, 0, 0, nil
	}

	res, err := l.script.Run(
		ctx,
		l.rdb,
		[]string{l.prefix + ":" + suffix},
		time.Now().UnixMilli(), l.window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}

	return parseWindowResult(res)
}

func parseWindowResult(res []int64) (bool, int64, time.Duration, error) {
	if len(res) != 3 {
		return false, 0, 0, fmt.Errorf("bad script result: %v", res)
	}
	return res[0] == 1, res[1], time.Duration(res[2]) * time.Millisecond, nil
}
