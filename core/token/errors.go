package token

import "errors"

// Package-level error definitions for session token operations.
var (
	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed structure, and expiry. The causes are deliberately not
	// distinguishable from the outside.
	ErrInvalidToken = errors.New("invalid token")

	ErrMissingSecret = errors.New("missing signing secret")
	ErrEmptySubject  = errors.New("empty subject")
)
