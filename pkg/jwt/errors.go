package jwt

import "errors"

// Package-level error definitions for JWT operations.
var (
	ErrMissingSigningKey       = errors.New("missing signing key")
	ErrMissingClaims           = errors.New("missing claims")
	ErrInvalidToken            = errors.New("invalid token")
	ErrExpiredToken            = errors.New("token has expired")
	ErrInvalidSignature        = errors.New("invalid token signature")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
)
