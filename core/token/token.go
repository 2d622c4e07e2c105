package token

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/gateguard/core/permission"
	"github.com/dmitrymomot/gateguard/pkg/jwt"
)

// Claims is the payload carried by a session token: an identity, a
// permission set, and arbitrary caller-supplied claims.
type Claims struct {
	jwt.StandardClaims
	Permissions []string       `json:"permissions,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// Issuer creates and verifies signed, time-bound session tokens. Tokens are
// self-contained: the issuer keeps no per-token state, only the signing
// secret. A token is either valid (signature correct and unexpired) or
// invalid; there is no revoked state.
type Issuer struct {
	svc    *jwt.Service
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithTTL sets the token lifetime (default 24h).
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithIssuer sets the iss claim on generated tokens.
func WithIssuer(issuer string) Option {
	return func(i *Issuer) {
		i.issuer = issuer
	}
}

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// New creates a token issuer with the given signing secret.
// An empty secret is a configuration error and should abort startup.
func New(signingSecret string, opts ...Option) (*Issuer, error) {
	svc, err := jwt.NewFromString(signingSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingSecret, err)
	}

	i := &Issuer{
		svc: svc,
		ttl: 24 * time.Hour,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue creates a signed token for the subject. An empty permission set
// defaults to the wildcard, mirroring API-key issuance. Custom claims are
// carried under the "custom" key and returned verbatim on Verify.
func (i *Issuer) Issue(subject string, permissions []string, custom map[string]any) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	if len(permissions) == 0 {
		permissions = []string{permission.Wildcard}
	}

	now := i.now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(i.ttl).Unix(),
		},
		Permissions: permissions,
		Custom:      custom,
	}

	token, err := i.svc.Generate(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and expiry and returns its claims.
// Every failure mode (tampered, malformed, expired) collapses into
// ErrInvalidToken so callers cannot probe which part of the check failed.
func (i *Issuer) Verify(token string) (*Claims, error) {
	var claims Claims
	if err := i.svc.Parse(token, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if err := claims.Valid(i.now()); err != nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
