package gate

import "errors"

var (
	// ErrMissingLimiter is returned by New when no rate limiter is provided.
	ErrMissingLimiter = errors.New("gate: missing rate limiter")

	// ErrMissingChecker is returned by New when no permission checker is provided.
	ErrMissingChecker = errors.New("gate: missing permission checker")

	// ErrInvalidLimiterConfig is returned by New when the limiter config used
	// for per-key overrides fails validation.
	ErrInvalidLimiterConfig = errors.New("gate: invalid limiter config")
)
