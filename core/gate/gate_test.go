package gate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gateguard/core/apikey"
	"github.com/dmitrymomot/gateguard/core/gate"
	"github.com/dmitrymomot/gateguard/core/permission"
	"github.com/dmitrymomot/gateguard/core/ratelimiter"
	"github.com/dmitrymomot/gateguard/core/token"
)

func newGate(t *testing.T, cfg ratelimiter.Config, keys *apikey.Store, tokens *token.Issuer) *gate.Gate {
	t.Helper()

	limiter, err := ratelimiter.New(cfg)
	require.NoError(t, err)

	g, err := gate.New(gate.Config{
		Limiter:       limiter,
		Keys:          keys,
		Tokens:        tokens,
		Checker:       permission.NewChecker(),
		LimiterConfig: cfg,
	})
	require.NoError(t, err)
	return g
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 10}
	limiter, err := ratelimiter.New(cfg)
	require.NoError(t, err)

	_, err = gate.New(gate.Config{Checker: permission.NewChecker(), LimiterConfig: cfg})
	require.ErrorIs(t, err, gate.ErrMissingLimiter)

	_, err = gate.New(gate.Config{Limiter: limiter, LimiterConfig: cfg})
	require.ErrorIs(t, err, gate.ErrMissingChecker)

	_, err = gate.New(gate.Config{
		Limiter:       limiter,
		Checker:       permission.NewChecker(),
		LimiterConfig: ratelimiter.Config{RequestsPerMinute: -1},
	})
	require.ErrorIs(t, err, gate.ErrInvalidLimiterConfig)
}

func TestCheck_APIKeyFlow(t *testing.T) {
	t.Parallel()

	keys := apikey.New()
	secret, err := keys.Create("scoring", apikey.WithPermissions("predict"))
	require.NoError(t, err)

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 10}, keys, nil)

	d := g.Check(context.Background(), gate.Request{
		ClientIP: "203.0.113.7",
		Endpoint: "/predict",
		APIKey:   secret,
	})
	assert.Equal(t, gate.StatusAllowed, d.Status)
	assert.True(t, d.Allowed())
	assert.Equal(t, "scoring", d.Subject)
	assert.NotEmpty(t, d.KeyID)
	assert.Equal(t, []string{"predict"}, d.Permissions)
	assert.Equal(t, 10, d.Limit)
	assert.Equal(t, 9, d.Remaining)

	// Same key, endpoint outside its grant.
	d = g.Check(context.Background(), gate.Request{
		ClientIP: "203.0.113.7",
		Endpoint: "/control/start",
		APIKey:   secret,
	})
	assert.Equal(t, gate.StatusForbidden, d.Status)
	assert.False(t, d.Allowed())
	assert.Zero(t, d.RetryAfter)
}

func TestCheck_TokenFlow(t *testing.T) {
	t.Parallel()

	tokens, err := token.New("test-signing-secret")
	require.NoError(t, err)

	signed, err := tokens.Issue("analyst@example.com", []string{"read"}, nil)
	require.NoError(t, err)

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 10}, nil, tokens)

	d := g.Check(context.Background(), gate.Request{Endpoint: "/status", Token: signed})
	assert.Equal(t, gate.StatusAllowed, d.Status)
	assert.Equal(t, "analyst@example.com", d.Subject)
	assert.Empty(t, d.KeyID)

	d = g.Check(context.Background(), gate.Request{Endpoint: "/predict", Token: signed})
	assert.Equal(t, gate.StatusForbidden, d.Status)

	d = g.Check(context.Background(), gate.Request{Endpoint: "/status", Token: "not.a.token"})
	assert.Equal(t, gate.StatusUnauthenticated, d.Status)
}

func TestCheck_AnonymousAccess(t *testing.T) {
	t.Parallel()

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 10}, nil, nil)

	// No credential: public endpoints only.
	d := g.Check(context.Background(), gate.Request{ClientIP: "198.51.100.2", Endpoint: "/health"})
	assert.Equal(t, gate.StatusAllowed, d.Status)

	d = g.Check(context.Background(), gate.Request{ClientIP: "198.51.100.2", Endpoint: "/predict"})
	assert.Equal(t, gate.StatusForbidden, d.Status)
}

func TestCheck_RejectedCredentialBurnsNoAllowance(t *testing.T) {
	t.Parallel()

	keys := apikey.New()

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 1}, keys, nil)

	// A bad credential is rejected before admission control runs, so it
	// cannot be used to drain another identity's allowance.
	for range 5 {
		d := g.Check(context.Background(), gate.Request{
			ClientIP: "198.51.100.2",
			Endpoint: "/health",
			APIKey:   "gg_never-issued",
		})
		assert.Equal(t, gate.StatusUnauthenticated, d.Status)
	}

	d := g.Check(context.Background(), gate.Request{ClientIP: "198.51.100.2", Endpoint: "/health"})
	assert.Equal(t, gate.StatusAllowed, d.Status)
}

func TestCheck_RateLimitBeforeAuthorization(t *testing.T) {
	t.Parallel()

	keys := apikey.New()
	secret, err := keys.Create("reader", apikey.WithPermissions("read"))
	require.NoError(t, err)

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 1, BurstSize: 1}, keys, nil)

	// The first call passes admission and fails authorization.
	d := g.Check(context.Background(), gate.Request{Endpoint: "/predict", APIKey: secret})
	require.Equal(t, gate.StatusForbidden, d.Status)

	// The second call is over limit; the rate-limit verdict masks the
	// permission verdict entirely.
	d = g.Check(context.Background(), gate.Request{Endpoint: "/predict", APIKey: secret})
	assert.Equal(t, gate.StatusRateLimited, d.Status)
	assert.GreaterOrEqual(t, d.RetryAfter, time.Second)
	assert.False(t, d.Allowed())
}

func TestCheck_PerKeyRateOverride(t *testing.T) {
	t.Parallel()

	keys := apikey.New()
	limited, err := keys.Create("throttled", apikey.WithRateLimit(2))
	require.NoError(t, err)
	unlimited, err := keys.Create("regular")
	require.NoError(t, err)

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 600, BurstSize: 100}, keys, nil)

	// The override key gets exactly its own budget.
	for range 2 {
		d := g.Check(context.Background(), gate.Request{Endpoint: "/health", APIKey: limited})
		require.Equal(t, gate.StatusAllowed, d.Status)
	}
	d := g.Check(context.Background(), gate.Request{Endpoint: "/health", APIKey: limited})
	assert.Equal(t, gate.StatusRateLimited, d.Status)
	assert.Equal(t, 2, d.Limit)

	// Other keys are untouched by the override.
	d = g.Check(context.Background(), gate.Request{Endpoint: "/health", APIKey: unlimited})
	assert.Equal(t, gate.StatusAllowed, d.Status)
	assert.Equal(t, 100, d.Limit)
}

func TestCheck_ClientIsolation(t *testing.T) {
	t.Parallel()

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 1}, nil, nil)

	d := g.Check(context.Background(), gate.Request{ClientIP: "198.51.100.2", Endpoint: "/health"})
	require.Equal(t, gate.StatusAllowed, d.Status)
	d = g.Check(context.Background(), gate.Request{ClientIP: "198.51.100.2", Endpoint: "/health"})
	require.Equal(t, gate.StatusRateLimited, d.Status)

	// A different IP has its own allowance.
	d = g.Check(context.Background(), gate.Request{ClientIP: "198.51.100.3", Endpoint: "/health"})
	assert.Equal(t, gate.StatusAllowed, d.Status)
}

func TestReset(t *testing.T) {
	t.Parallel()

	g := newGate(t, ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 1}, nil, nil)

	req := gate.Request{ClientIP: "198.51.100.2", Endpoint: "/health"}
	require.Equal(t, gate.StatusAllowed, g.Check(context.Background(), req).Status)
	require.Equal(t, gate.StatusRateLimited, g.Check(context.Background(), req).Status)

	require.NoError(t, g.Reset(context.Background(), "ip:198.51.100.2"))

	assert.Equal(t, gate.StatusAllowed, g.Check(context.Background(), req).Status)
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, clientID string) (*ratelimiter.Result, error) {
	return nil, errors.New("backend unavailable")
}

func (failingLimiter) Reset(ctx context.Context, clientID string) error { return nil }

func TestCheck_FailsClosedOnLimiterError(t *testing.T) {
	t.Parallel()

	g, err := gate.New(gate.Config{
		Limiter:       failingLimiter{},
		Checker:       permission.NewChecker(),
		LimiterConfig: ratelimiter.Config{RequestsPerMinute: 60, BurstSize: 10},
	})
	require.NoError(t, err)

	d := g.Check(context.Background(), gate.Request{ClientIP: "198.51.100.2", Endpoint: "/health"})
	assert.Equal(t, gate.StatusInternalError, d.Status)
	assert.False(t, d.Allowed())
}
