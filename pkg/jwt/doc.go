// Package jwt provides an RFC 7519 compliant JSON Web Token implementation
// using HMAC-SHA256.
//
// The package covers generation, validation, and parsing of JWTs with
// standard claims and custom payload structures. Signature verification uses
// constant-time comparison.
//
// # Usage
//
// Create a service with a signing key (at least 32 bytes of secure random
// data):
//
//	service, err := jwt.NewFromString("your-secret-key")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Generate a token with standard claims:
//
//	claims := jwt.StandardClaims{
//		Subject:   "user123",
//		ExpiresAt: time.Now().Add(time.Hour).Unix(),
//		IssuedAt:  time.Now().Unix(),
//	}
//	token, err := service.Generate(claims)
//
// Custom claims embed StandardClaims:
//
//	type CustomClaims struct {
//		jwt.StandardClaims
//		Role string `json:"role"`
//	}
//
// Parse and validate:
//
//	var claims CustomClaims
//	if err := service.Parse(token, &claims); err != nil {
//		switch {
//		case errors.Is(err, jwt.ErrExpiredToken):
//			// token past its exp claim
//		case errors.Is(err, jwt.ErrInvalidSignature):
//			// tampered token or wrong key
//		default:
//			// malformed token
//		}
//	}
//
// # Algorithm Choice
//
// HMAC-SHA256 keeps key management symmetric and is fast enough that token
// operations never dominate request latency. Any token whose header names a
// different algorithm is rejected with ErrUnexpectedSigningMethod before the
// signature is considered.
package jwt
