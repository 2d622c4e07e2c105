package ratelimiter

import (
	"context"
	"time"
)

// Limiter is the contract for per-client admission control.
// Implementations must be safe for concurrent use: two simultaneous calls
// for the same client must never both be admitted when only one slot remains.
type Limiter interface {
	// Allow reports whether a single request from the given client may
	// proceed. A client never seen before is treated as fully available.
	Allow(ctx context.Context, clientID string) (*Result, error)

	// Reset unconditionally clears the client's rate-limit state.
	// Used for administrative overrides and test isolation.
	Reset(ctx context.Context, clientID string) error
}

// Result describes the outcome of a single admission check.
type Result struct {
	// Limit is the maximum number of requests the strategy admits:
	// the bucket capacity for token bucket, requests per minute otherwise.
	Limit int

	// Remaining is the number of requests still available for the client,
	// clamped to zero.
	Remaining int

	// ResetAt is when the client's allowance is fully replenished
	// (bucket full, or the current window aged out).
	ResetAt time.Time

	allowed    bool
	retryAfter time.Duration
}

// Allowed reports whether the request was admitted.
func (r *Result) Allowed() bool {
	return r.allowed
}

// RetryAfter returns how long the client should wait before retrying.
// It is always at least one second when the request was denied, and zero
// when it was admitted.
func (r *Result) RetryAfter() time.Duration {
	return r.retryAfter
}

// retryAfterSeconds converts a raw wait duration into the whole-second
// retry hint surfaced to clients: truncate and add one, never below 1s.
func retryAfterSeconds(wait time.Duration) time.Duration {
	secs := int64(wait.Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}
