package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr(), PoolSize: 2})
	defer Close(client)

	limiter := NewRedisRateLimiter(client, "")
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("WithinLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}

		allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("KeyExpires", func(t *testing.T) {
		assert.True(t, s.Exists("shareit:rate_limit:1"))
		assert.Equal(t, time.Minute, s.TTL("shareit:rate_limit:1"))

		s.FastForward(2 * time.Minute)

		allowed, err := limiter.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ActorsIsolated", func(t *testing.T) {
		allowed, err := limiter.CheckRateLimit(ctx, 2, 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("LOADING")
		defer s.SetError("")

		_, err := limiter.CheckRateLimit(ctx, 3, 1, time.Minute)
		assert.Error(t, err)
	})
}

func TestRedisRateLimiter_NilClient(t *testing.T) {
	limiter := &RedisRateLimiter{}
	_, err := limiter.CheckRateLimit(context.Background(), 1, 1, time.Minute)
	assert.Error(t, err)

	assert.NoError(t, Close(nil))
}

func TestPing_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	assert.Error(t, Ping(context.Background(), client))
}
