package ratelimiter

import "errors"

// Package-level error definitions for rate limiter operations.
var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNotStarted     = errors.New("limiter cleanup not started")
	ErrAlreadyStarted = errors.New("limiter cleanup already started")
)
