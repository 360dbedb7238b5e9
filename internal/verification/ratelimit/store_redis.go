package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares limiter state across gateway instances. SET NX with a
// TTL equal to the minimum interval makes the reserve atomic: whichever
// concurrent attempt sets the key wins, the rest read the remaining TTL as
// their retry delay.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed limiter store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Reserve implements Store.
func (s *RedisStore) Reserve(ctx context.Context, subjectID string, now time.Time, minInterval time.Duration) (time.Duration, bool, error) {
	key := "facegate:verify:last:" + subjectID

	ok, err := s.client.SetNX(ctx, key, now.UnixMilli(), minInterval).Result()
	if err != nil {
		return 0, false, fmt.Errorf("reserve verification attempt: %w", err)
	}
	if ok {
		return 0, true, nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("read attempt ttl: %w", err)
	}
	if ttl < 0 {
		// Key expired between SETNX and PTTL; treat as a full wait rather
		// than racing a second reserve.
		ttl = minInterval
	}
	return ttl, false, nil
}
