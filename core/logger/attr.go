package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety: a zero-value
// argument yields an empty Attr, so call sites never need explicit checks.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Latency is an alias for Duration, commonly used in web contexts.
func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// RequestID creates an attribute for HTTP request IDs.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// ClientID creates an attribute for the identifier rate-limit state is
// tracked under (network address or resolved credential identity).
func ClientID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("client_id", id)
}

// Endpoint creates an attribute for gated endpoint identifiers.
func Endpoint(endpoint string) slog.Attr {
	return slog.String("endpoint", endpoint)
}

// Decision creates an attribute for gating outcomes.
func Decision(status string) slog.Attr {
	return slog.String("decision", status)
}

// Subject creates an attribute for authenticated identities.
func Subject(subject string) slog.Attr {
	if subject == "" {
		return slog.Attr{}
	}
	return slog.String("subject", subject)
}

// KeyID creates an attribute for API key identifiers. Key ids are safe to
// log; plaintext secrets and digests never are.
func KeyID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("key_id", id)
}

// RetryAfter creates an attribute for rate-limit wait hints.
func RetryAfter(d time.Duration) slog.Attr {
	if d <= 0 {
		return slog.Attr{}
	}
	return slog.Duration("retry_after", d)
}

// Strategy creates an attribute for rate-limit strategy names.
func Strategy(name string) slog.Attr {
	return slog.String("strategy", name)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
