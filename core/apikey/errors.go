package apikey

import "errors"

// Package-level error definitions for API key operations.
var (
	// ErrInvalidKey covers unknown and revoked secrets alike, so a caller
	// probing the store cannot learn whether a key ever existed.
	ErrInvalidKey = errors.New("invalid API key")

	ErrKeyNotFound       = errors.New("API key not found")
	ErrRandomnessFailure = errors.New("randomness source failure")
)
