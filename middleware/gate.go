package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/gateguard/core/gate"
	"github.com/dmitrymomot/gateguard/pkg/clientip"
)

// decisionContextKey is used as a key for storing the gate decision in request context.
type decisionContextKey struct{}

// GateConfig configures the admission middleware.
type GateConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool

	// Gate runs the admission pipeline. Required.
	Gate *gate.Gate

	// APIKeyHeader is the header carrying API key secrets (default: "X-API-Key")
	APIKeyHeader string

	// EndpointFunc maps a request to the logical endpoint checked against
	// the permission table (default: the URL path).
	EndpointFunc func(r *http.Request) string
}

// Gate creates an admission middleware over the given gate with default
// configuration.
func Gate(g *gate.Gate) Middleware {
	return GateWithConfig(GateConfig{Gate: g})
}

// GateWithConfig creates an admission middleware with custom configuration.
// It resolves credentials from the request (API key header, bearer token),
// runs the admission pipeline, and translates the decision into a response:
// 401 for rejected credentials, 429 with a Retry-After header when over
// limit, 403 for missing permissions. Allowed requests continue with the
// decision stored in context, and rate-limit accounting is exposed through
// X-RateLimit-* headers on every response that ran an admission check.
func GateWithConfig(cfg GateConfig) Middleware {
	if cfg.Gate == nil {
		panic("middleware: gate is required")
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}
	if cfg.EndpointFunc == nil {
		cfg.EndpointFunc = func(r *http.Request) string {
			return r.URL.Path
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ip, ok := GetClientIP(r.Context())
			if !ok {
				ip = clientip.GetIP(r)
			}

			d := cfg.Gate.Check(r.Context(), gate.Request{
				ClientIP: ip,
				Endpoint: cfg.EndpointFunc(r),
				APIKey:   r.Header.Get(cfg.APIKeyHeader),
				Token:    bearerToken(r),
			})

			setRateLimitHeaders(w, d)

			switch d.Status {
			case gate.StatusAllowed:
				ctx := context.WithValue(r.Context(), decisionContextKey{}, d)
				next.ServeHTTP(w, r.WithContext(ctx))
			case gate.StatusUnauthenticated:
				writeError(w, http.StatusUnauthorized, "invalid or missing credentials")
			case gate.StatusRateLimited:
				w.Header().Set("Retry-After", strconv.FormatInt(int64(d.RetryAfter.Seconds()), 10))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			case gate.StatusForbidden:
				writeError(w, http.StatusForbidden, "insufficient permissions")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		})
	}
}

// GetDecision retrieves the gate decision from the request context.
// Only present on requests that passed the admission middleware.
func GetDecision(ctx context.Context) (gate.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(gate.Decision)
	return d, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

func setRateLimitHeaders(w http.ResponseWriter, d gate.Decision) {
	if d.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
