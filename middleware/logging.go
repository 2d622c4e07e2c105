package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/gateguard/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool

	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger

	// LogLevel for request logging (default: slog.LevelInfo)
	LogLevel slog.Level

	// SlowRequestThreshold logs a warning for requests slower than this
	// (default: 0, disabled)
	SlowRequestThreshold time.Duration
}

// Logging creates a request logging middleware with default configuration.
func Logging() Middleware {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithConfig creates a request logging middleware with custom
// configuration. Each request is logged once, on completion, with method,
// path, status, latency, and the request id and client IP when upstream
// middleware stored them.
func LoggingWithConfig(cfg LoggingConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			log := cfg.Logger
			if log == nil {
				log = slog.Default()
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			requestID, _ := GetRequestID(r.Context())
			clientIP, _ := GetClientIP(r.Context())

			attrs := []slog.Attr{
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(rec.status),
				logger.Latency(elapsed),
				logger.RequestID(requestID),
				logger.ClientID(clientIP),
			}

			level := cfg.LogLevel
			msg := "request completed"
			if cfg.SlowRequestThreshold > 0 && elapsed > cfg.SlowRequestThreshold {
				level = slog.LevelWarn
				msg = "slow request"
			}
			log.LogAttrs(r.Context(), level, msg, attrs...)
		})
	}
}

// statusRecorder captures the response status code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
