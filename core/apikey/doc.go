// Package apikey manages opaque bearer credentials for API access.
//
// A secret is generated once, handed to the caller, and never stored:
// only its SHA-256 digest persists, and validation looks keys up by digest
// rather than comparing plaintext. Each key carries a permission set, an
// optional per-key rate limit, and usage counters updated on every
// successful validation.
//
//	store := apikey.New()
//
//	secret, err := store.Create("dashboard",
//		apikey.WithPermissions("read", "metrics"),
//		apikey.WithRateLimit(120),
//	)
//	// secret is shown exactly once; store it on the client side
//
//	meta, err := store.Validate(secret)
//	if err != nil {
//		// apikey.ErrInvalidKey: unknown or revoked, indistinguishable
//	}
//
// Revoked keys stay in the store, inactive, for audit; List and Get expose
// metadata only, never secrets or digests. State lives in process memory
// and does not survive restarts.
package apikey
