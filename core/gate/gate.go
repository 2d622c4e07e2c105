package gate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/gateguard/core/apikey"
	"github.com/dmitrymomot/gateguard/core/logger"
	"github.com/dmitrymomot/gateguard/core/permission"
	"github.com/dmitrymomot/gateguard/core/ratelimiter"
	"github.com/dmitrymomot/gateguard/core/token"
)

// Status is the outcome of a gating decision.
type Status string

const (
	// StatusAllowed admits the request.
	StatusAllowed Status = "allowed"

	// StatusRateLimited denies the request because the client exhausted its
	// allowance. Decision.RetryAfter carries the wait hint.
	StatusRateLimited Status = "rate_limited"

	// StatusUnauthenticated denies the request because a presented
	// credential did not validate. Requests with no credential at all are
	// anonymous, not unauthenticated.
	StatusUnauthenticated Status = "unauthenticated"

	// StatusForbidden denies the request because the authenticated identity
	// lacks a permission the endpoint requires.
	StatusForbidden Status = "forbidden"

	// StatusInternalError denies the request because a dependency failed.
	// The gate fails closed.
	StatusInternalError Status = "internal_error"
)

// Request is a single call to be gated.
type Request struct {
	// ClientIP identifies anonymous callers for rate limiting.
	ClientIP string

	// Endpoint is the logical endpoint being accessed, e.g. "/predict".
	Endpoint string

	// APIKey is the plaintext API key secret, if one was presented.
	APIKey string

	// Token is a signed session token, if one was presented. When both an
	// API key and a token are present, the key wins.
	Token string
}

// Decision is the gate's verdict on a request, with enough detail for the
// transport layer to build a response: status headers, rate-limit headers,
// and the resolved identity for downstream handlers.
type Decision struct {
	Status      Status
	RetryAfter  time.Duration
	Subject     string
	KeyID       string
	Permissions []string

	// Rate-limit accounting for response headers. Populated whenever an
	// admission check ran, on allowed and rate-limited decisions alike.
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed reports whether the request may proceed.
func (d *Decision) Allowed() bool {
	return d.Status == StatusAllowed
}

// Config holds the gate's collaborators. Limiter and Checker are required;
// a nil Keys or Tokens disables that credential form, and requests
// presenting it are treated as unauthenticated.
type Config struct {
	Limiter ratelimiter.Limiter
	Keys    *apikey.Store
	Tokens  *token.Issuer
	Checker *permission.Checker
	Logger  *slog.Logger

	// LimiterConfig is the global admission policy. Per-key rate overrides
	// reuse its strategy and burst with the key's requests-per-minute.
	LimiterConfig ratelimiter.Config
}

// Gate runs the full admission pipeline for each request: authenticate,
// rate-limit, authorize, in that order. A request that fails an earlier
// stage never reaches a later one, so an over-limit client learns nothing
// about its permissions and an invalid credential burns no allowance.
type Gate struct {
	limiter ratelimiter.Limiter
	keys    *apikey.Store
	tokens  *token.Issuer
	checker *permission.Checker
	log     *slog.Logger

	limiterCfg ratelimiter.Config

	// Per-key override limiters, keyed by requests-per-minute and built
	// lazily: keys sharing an override share state-tracking machinery but
	// not client records, since client ids embed the key id.
	mu        sync.Mutex
	overrides map[int]ratelimiter.Limiter
}

// New creates a gate from the given collaborators.
func New(cfg Config) (*Gate, error) {
	if cfg.Limiter == nil {
		return nil, ErrMissingLimiter
	}
	if cfg.Checker == nil {
		return nil, ErrMissingChecker
	}
	if err := cfg.LimiterConfig.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLimiterConfig, err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Gate{
		limiter:    cfg.Limiter,
		keys:       cfg.Keys,
		tokens:     cfg.Tokens,
		checker:    cfg.Checker,
		log:        log,
		limiterCfg: cfg.LimiterConfig,
		overrides:  make(map[int]ratelimiter.Limiter),
	}, nil
}

type identity struct {
	subject     string
	keyID       string
	permissions []string
	clientID    string
	rateLimit   int // per-key override, 0 means global
}

// Check runs the admission pipeline and returns a decision. It never
// returns an error to the caller: dependency failures become
// StatusInternalError so the transport layer always has a verdict.
func (g *Gate) Check(ctx context.Context, req Request) Decision {
	ident, ok := g.authenticate(req)
	if !ok {
		g.log.WarnContext(ctx, "credential rejected",
			logger.Endpoint(req.Endpoint),
			logger.ClientID(req.ClientIP),
			logger.Decision(string(StatusUnauthenticated)))
		return Decision{Status: StatusUnauthenticated}
	}

	res, err := g.allow(ctx, ident)
	if err != nil {
		g.log.ErrorContext(ctx, "admission check failed",
			logger.Endpoint(req.Endpoint),
			logger.ClientID(ident.clientID),
			logger.Error(err))
		return Decision{Status: StatusInternalError}
	}

	d := Decision{
		Subject:     ident.subject,
		KeyID:       ident.keyID,
		Permissions: ident.permissions,
		Limit:       res.Limit,
		Remaining:   res.Remaining,
		ResetAt:     res.ResetAt,
	}

	if !res.Allowed() {
		d.Status = StatusRateLimited
		d.RetryAfter = res.RetryAfter()
		g.log.InfoContext(ctx, "request rate limited",
			logger.Endpoint(req.Endpoint),
			logger.ClientID(ident.clientID),
			logger.RetryAfter(d.RetryAfter),
			logger.Decision(string(StatusRateLimited)))
		return d
	}

	if !g.checker.HasPermission(req.Endpoint, ident.permissions) {
		d.Status = StatusForbidden
		g.log.InfoContext(ctx, "request forbidden",
			logger.Endpoint(req.Endpoint),
			logger.ClientID(ident.clientID),
			logger.Subject(ident.subject),
			logger.KeyID(ident.keyID),
			logger.Decision(string(StatusForbidden)))
		return d
	}

	d.Status = StatusAllowed
	return d
}

// authenticate resolves the request's identity. The second return is false
// only when a credential was presented and rejected; a bare request is
// anonymous and proceeds with an empty permission set.
func (g *Gate) authenticate(req Request) (identity, bool) {
	switch {
	case req.APIKey != "":
		if g.keys == nil {
			return identity{}, false
		}
		meta, err := g.keys.Validate(req.APIKey)
		if err != nil {
			return identity{}, false
		}
		return identity{
			subject:     meta.Name,
			keyID:       meta.ID,
			permissions: meta.Permissions,
			clientID:    "key:" + meta.ID,
			rateLimit:   meta.RateLimit,
		}, true

	case req.Token != "":
		if g.tokens == nil {
			return identity{}, false
		}
		claims, err := g.tokens.Verify(req.Token)
		if err != nil {
			return identity{}, false
		}
		return identity{
			subject:     claims.Subject,
			permissions: claims.Permissions,
			clientID:    "sub:" + claims.Subject,
		}, true

	default:
		return identity{clientID: "ip:" + req.ClientIP}, true
	}
}

// allow runs the admission check against the global limiter, or against the
// key's override limiter when one is configured.
func (g *Gate) allow(ctx context.Context, ident identity) (*ratelimiter.Result, error) {
	lim := g.limiter
	if ident.rateLimit > 0 && ident.rateLimit != g.limiterCfg.RequestsPerMinute {
		var err error
		if lim, err = g.overrideLimiter(ident.rateLimit); err != nil {
			return nil, err
		}
	}
	return lim.Allow(ctx, ident.clientID)
}

func (g *Gate) overrideLimiter(requestsPerMinute int) (ratelimiter.Limiter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if lim, ok := g.overrides[requestsPerMinute]; ok {
		return lim, nil
	}

	cfg := g.limiterCfg
	cfg.RequestsPerMinute = requestsPerMinute
	if cfg.BurstSize > requestsPerMinute {
		cfg.BurstSize = requestsPerMinute
	}
	lim, err := ratelimiter.New(cfg)
	if err != nil {
		return nil, err
	}
	g.overrides[requestsPerMinute] = lim
	g.log.Debug("created override limiter",
		logger.Count("requests_per_minute", requestsPerMinute),
		logger.Strategy(string(cfg.Strategy)))
	return lim, nil
}

// Reset clears rate-limit state for a client identifier across the global
// limiter and every override limiter.
func (g *Gate) Reset(ctx context.Context, clientID string) error {
	if err := g.limiter.Reset(ctx, clientID); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, lim := range g.overrides {
		if err := lim.Reset(ctx, clientID); err != nil {
			return err
		}
	}
	return nil
}
