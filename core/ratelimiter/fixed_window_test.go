package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gateguard/core/ratelimiter"
)

func newFixedLimiter(t *testing.T, rpm int, now *time.Time) ratelimiter.Limiter {
	t.Helper()

	limiter, err := ratelimiter.New(ratelimiter.Config{
		RequestsPerMinute: rpm,
		Strategy:          ratelimiter.StrategyFixedWindow,
	}, ratelimiter.WithClock(func() time.Time { return *now }))
	require.NoError(t, err)
	return limiter
}

func TestFixedWindow_CountsWithinWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := newFixedLimiter(t, 3, &now)

	for i := range 3 {
		result, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, result.Allowed(), "call %d should be admitted", i+1)
		now = now.Add(time.Second)
	}

	result, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, result.Allowed())
	assert.GreaterOrEqual(t, result.RetryAfter(), time.Second)
}

func TestFixedWindow_NoResetMidWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := newFixedLimiter(t, 2, &now)

	for range 2 {
		result, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		require.True(t, result.Allowed())
	}

	// Denied for the rest of the window, no matter how often we retry.
	for _, offset := range []time.Duration{10, 30, 59} {
		now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset * time.Second)
		result, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.False(t, result.Allowed(), "still inside the window at +%ds", offset)
	}
}

func TestFixedWindow_BoundaryAdmitsFreshBudget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	limiter := newFixedLimiter(t, 2, &now)

	// Exhaust the first window right before it closes.
	now = start.Add(59 * time.Second)
	for range 2 {
		result, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		require.True(t, result.Allowed())
	}

	// Crossing the boundary resets the counter to 1 for the triggering
	// request: a straddling burst can reach 2x the configured rate.
	now = start.Add(61 * time.Second)
	for i := range 2 {
		result, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, result.Allowed(), "call %d in the new window", i+1)
	}

	result, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, result.Allowed())
}

func TestFixedWindow_RetryAfterPointsAtWindowEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	limiter := newFixedLimiter(t, 1, &now)

	result, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, result.Allowed())

	now = start.Add(20 * time.Second)
	result, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.False(t, result.Allowed())
	assert.Equal(t, 40*time.Second, result.RetryAfter())
	assert.Equal(t, start.Add(time.Minute), result.ResetAt)
}
