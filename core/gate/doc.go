// Package gate combines authentication, rate limiting, and authorization
// into a single admission decision per request.
//
// The pipeline order is fixed: authenticate, rate-limit, authorize. An
// invalid credential is rejected before it consumes rate-limit allowance,
// and an over-limit client is turned away before its permissions are
// examined, so denial responses never leak authorization details.
//
//	g, err := gate.New(gate.Config{
//		Limiter:       limiter,
//		Keys:          keys,
//		Tokens:        tokens,
//		Checker:       permission.NewChecker(),
//		LimiterConfig: limiterCfg,
//	})
//
//	d := g.Check(ctx, gate.Request{
//		ClientIP: "203.0.113.7",
//		Endpoint: "/predict",
//		APIKey:   presentedKey,
//	})
//	if !d.Allowed() {
//		// d.Status says why; d.RetryAfter is set when rate limited
//	}
//
// Requests carrying no credential are anonymous: they are rate limited by
// client IP and hold an empty permission set, which admits them to public
// endpoints only. API keys with a per-key rate override are checked against
// a dedicated limiter sharing the global strategy and burst policy.
package gate
