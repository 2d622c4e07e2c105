// Package middleware provides net/http middleware for the gating layer:
// admission control, client IP resolution, request IDs, and request logging.
//
// Each middleware follows the same pattern: a zero-config constructor and a
// WithConfig variant taking a config struct with an optional Skip predicate.
//
//	handler := middleware.Chain(
//		middleware.RequestID(),
//		middleware.ClientIP(),
//		middleware.Logging(),
//		middleware.Gate(g),
//	)(mux)
//
// The admission middleware reads API keys from the X-API-Key header and
// session tokens from the Authorization header (Bearer scheme), and maps
// gate decisions onto HTTP status codes: 401 unauthenticated, 403
// forbidden, 429 rate limited with a Retry-After header. Allowed requests
// carry the decision in context, retrievable with GetDecision.
package middleware
