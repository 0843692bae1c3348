package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

// IdemState is what a caller finds when it claims an idempotency key.
type IdemState int

const (
	// IdemAcquired means the caller owns the key and must save or release it.
	IdemAcquired IdemState = iota
	// IdemInProgress means another request holds the key.
	IdemInProgress
	// IdemReplay means a stored result is available.
	IdemReplay
)

// IdempotencyStore remembers the response of a request made under an
// idempotency key. A key is either locked while the first request runs or
// holds that request's JSON result.
type IdempotencyStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl, lockTTL time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

// Claim tries to take key. On IdemReplay the stored payload is returned.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (IdemState, string, error) {
	if payload, ok, err := s.GetResult(ctx, key); err != nil || ok {
		return IdemReplay, payload, err
	}

	locked, err := s.rdb.SetNX(ctx, key, lockValue, s.lockTTL).Result()
	if err != nil {
		return IdemInProgress, "", err
	}
	if locked {
		return IdemAcquired, "", nil
	}

	// lost the race; the winner may have finished in between
	if payload, ok, err := s.GetResult(ctx, key); err != nil || ok {
		return IdemReplay, payload, err
	}

	return IdemInProgress, "", nil
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, jsonPayload string) error {
	return s.rdb.Set(ctx, key, resultPrefix+jsonPayload, s.ttl).Err()
}

func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if payload, ok := strings.CutPrefix(v, resultPrefix); ok {
		return payload, true, nil
	}

	return "", false, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
