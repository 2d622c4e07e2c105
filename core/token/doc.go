// Package token issues and verifies signed, time-bound session tokens
// carrying an identity and a permission set.
//
// Tokens are self-contained JWTs: verification is stateless, driven entirely
// by the signature and the expiry claim. There is no server-side record per
// token and no revocation list; a token is valid until it expires.
//
//	issuer, err := token.New(cfg.SigningSecret, token.WithTTL(24*time.Hour))
//	if err != nil {
//		// missing secret is fatal at startup
//	}
//
//	tok, err := issuer.Issue("user123", []string{"predict", "read"}, nil)
//
//	claims, err := issuer.Verify(tok)
//	if err != nil {
//		// token.ErrInvalidToken, regardless of why
//	}
//
// Verify never reveals whether a token was tampered with, malformed, or
// expired; every failure is the same ErrInvalidToken.
package token
