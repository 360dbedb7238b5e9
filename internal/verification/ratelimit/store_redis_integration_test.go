//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"facegate/internal/verification/ratelimit"
	"facegate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = ratelimit.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestReserve() {
	ctx := context.Background()
	now := time.Now()

	_, allowed, err := s.store.Reserve(ctx, "emp-1", now, 3*time.Second)
	s.Require().NoError(err)
	s.True(allowed)

	retryAfter, allowed, err := s.store.Reserve(ctx, "emp-1", now.Add(time.Second), 3*time.Second)
	s.Require().NoError(err)
	s.False(allowed)
	s.Greater(retryAfter, time.Duration(0))
	s.LessOrEqual(retryAfter, 3*time.Second)

	_, allowed, err = s.store.Reserve(ctx, "emp-2", now, 3*time.Second)
	s.Require().NoError(err)
	s.True(allowed, "different subjects are limited independently")
}

func (s *RedisStoreSuite) TestReserveAfterExpiry() {
	ctx := context.Background()

	_, allowed, err := s.store.Reserve(ctx, "emp-1", time.Now(), 100*time.Millisecond)
	s.Require().NoError(err)
	s.True(allowed)

	time.Sleep(150 * time.Millisecond)

	_, allowed, err = s.store.Reserve(ctx, "emp-1", time.Now(), 100*time.Millisecond)
	s.Require().NoError(err)
	s.True(allowed, "attempt after the interval is allowed")
}
