// Package logger provides slog attribute helpers for consistent structured
// logging across the gating layer.
//
// Helpers follow the empty Attr pattern: nil or zero arguments produce an
// attribute that slog drops, so call sites stay free of nil checks:
//
//	log.Info("request denied",
//		logger.ClientID(clientID),
//		logger.Endpoint(endpoint),
//		logger.Decision("rate_limited"),
//		logger.RetryAfter(retryAfter),
//	)
package logger
