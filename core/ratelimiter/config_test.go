package ratelimiter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gateguard/core/ratelimiter"
)

func TestNew_ConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ratelimiter.Config
		ok   bool
	}{
		{
			name: "defaults to token bucket",
			cfg:  ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 10},
			ok:   true,
		},
		{
			name: "sliding window ignores burst",
			cfg:  ratelimiter.Config{RequestsPerMinute: 60, Strategy: ratelimiter.StrategySlidingWindow},
			ok:   true,
		},
		{
			name: "fixed window ignores burst",
			cfg:  ratelimiter.Config{RequestsPerMinute: 60, Strategy: ratelimiter.StrategyFixedWindow},
			ok:   true,
		},
		{
			name: "zero rate",
			cfg:  ratelimiter.Config{RequestsPerMinute: 0, BurstSize: 10},
		},
		{
			name: "negative rate",
			cfg:  ratelimiter.Config{RequestsPerMinute: -5, BurstSize: 10},
		},
		{
			name: "token bucket without burst",
			cfg:  ratelimiter.Config{RequestsPerMinute: 60, Strategy: ratelimiter.StrategyTokenBucket},
		},
		{
			name: "unknown strategy",
			cfg:  ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 10, Strategy: "leaky_bucket"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			limiter, err := ratelimiter.New(tt.cfg)
			if tt.ok {
				require.NoError(t, err)
				assert.NotNil(t, limiter)
				return
			}
			require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}
