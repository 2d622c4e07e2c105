package token_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gateguard/core/token"
	"github.com/dmitrymomot/gateguard/pkg/jwt"
)

const testSecret = "session-signing-secret-for-tests"

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := token.New(testSecret)
	require.NoError(t, err)

	tok, err := issuer.Issue("user123", []string{"predict", "read"}, map[string]any{"team": "fraud-ops"})
	require.NoError(t, err)

	claims, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.Subject)
	assert.Equal(t, []string{"predict", "read"}, claims.Permissions)
	assert.Equal(t, "fraud-ops", claims.Custom["team"])
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestIssuer_DefaultsToWildcard(t *testing.T) {
	t.Parallel()

	issuer, err := token.New(testSecret)
	require.NoError(t, err)

	tok, err := issuer.Issue("user123", nil, nil)
	require.NoError(t, err)

	claims, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, claims.Permissions)
}

func TestIssuer_TTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := token.New(testSecret,
		token.WithTTL(2*time.Hour),
		token.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	tok, err := issuer.Issue("user123", nil, nil)
	require.NoError(t, err)

	// Decode the payload directly: the fixed 2025 timestamps would fail the
	// temporal checks in Verify.
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims token.Claims
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, now.Unix(), claims.IssuedAt)
	assert.Equal(t, now.Add(2*time.Hour).Unix(), claims.ExpiresAt)
}

func TestIssuer_ExpiredRejected(t *testing.T) {
	t.Parallel()

	issuer, err := token.New(testSecret)
	require.NoError(t, err)

	// Forge a structurally valid token whose exp is in the past.
	svc, err := jwt.NewFromString(testSecret)
	require.NoError(t, err)

	expired, err := svc.Generate(token.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "user123",
			IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
		Permissions: []string{"*"},
	})
	require.NoError(t, err)

	_, err = issuer.Verify(expired)
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestIssuer_TamperedRejected(t *testing.T) {
	t.Parallel()

	issuer, err := token.New(testSecret)
	require.NoError(t, err)

	tok, err := issuer.Issue("user123", []string{"read"}, nil)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[len(sig)-1] == 'x' {
		sig[len(sig)-1] = 'y'
	} else {
		sig[len(sig)-1] = 'x'
	}

	_, err = issuer.Verify(parts[0] + "." + parts[1] + "." + string(sig))
	require.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestIssuer_FailureModesIndistinguishable(t *testing.T) {
	t.Parallel()

	issuer, err := token.New(testSecret)
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Verify(tok)
		assert.ErrorIs(t, err, token.ErrInvalidToken, "token %q", tok)
	}
}

func TestIssuer_Config(t *testing.T) {
	t.Parallel()

	_, err := token.New("")
	require.ErrorIs(t, err, token.ErrMissingSecret)

	issuer, err := token.New(testSecret)
	require.NoError(t, err)

	_, err = issuer.Issue("", nil, nil)
	require.ErrorIs(t, err, token.ErrEmptySubject)
}
