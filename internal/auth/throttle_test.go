package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle(t *testing.T, limit int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, limit, window), mr
}

func TestThrottleAllowsUnderLimit(t *testing.T) {
	throttle, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := throttle.Allow(ctx, "jo@example.com", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed)
		require.NoError(t, throttle.RecordFailure(ctx, "jo@example.com", "10.0.0.1"))
	}

	allowed, err := throttle.Allow(ctx, "jo@example.com", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestThrottleBlocksAtLimit(t *testing.T) {
	throttle, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, throttle.RecordFailure(ctx, "jo@example.com", "10.0.0.1"))
	}

	allowed, err := throttle.Allow(ctx, "jo@example.com", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different client IP keeps its own budget.
	allowed, err = throttle.Allow(ctx, "jo@example.com", "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestThrottleWindowExpires(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, throttle.RecordFailure(ctx, "jo@example.com", "10.0.0.1"))
	allowed, err := throttle.Allow(ctx, "jo@example.com", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(2 * time.Minute)

	allowed, err = throttle.Allow(ctx, "jo@example.com", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestThrottleResetClearsCounter(t *testing.T) {
	throttle, _ := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, throttle.RecordFailure(ctx, "jo@example.com", "10.0.0.1"))
	require.NoError(t, throttle.Reset(ctx, "jo@example.com", "10.0.0.1"))

	allowed, err := throttle.Allow(ctx, "jo@example.com", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestThrottleFailsOpenWithoutRedis(t *testing.T) {
	var throttle *LoginThrottle
	allowed, err := throttle.Allow(context.Background(), "jo@example.com", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, throttle.RecordFailure(context.Background(), "jo@example.com", "10.0.0.1"))
	assert.NoError(t, throttle.Reset(context.Background(), "jo@example.com", "10.0.0.1"))
}

func TestThrottleFailsOpenOnRedisError(t *testing.T) {
	throttle, mr := newTestThrottle(t, 3, time.Minute)
	mr.Close()

	allowed, err := throttle.Allow(context.Background(), "jo@example.com", "10.0.0.1")
	assert.Error(t, err)
	assert.True(t, allowed)
}
