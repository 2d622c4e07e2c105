package ratelimiter

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Strategy selects the admission-control algorithm. The strategy is fixed
// at construction time; there is no per-call branching on a type tag.
type Strategy string

const (
	// StrategyTokenBucket admits bursts up to BurstSize while enforcing a
	// long-run average of RequestsPerMinute. This is the default: bursty
	// clients should not be penalized the instant they exceed an
	// instantaneous rate, provided the average holds.
	StrategyTokenBucket Strategy = "token_bucket"

	// StrategySlidingWindow counts exact request timestamps in the trailing
	// minute. Precise, but memory grows with per-client traffic volume.
	StrategySlidingWindow Strategy = "sliding_window"

	// StrategyFixedWindow counts requests in discrete one-minute buckets.
	// Cheapest to track, but admits up to twice the configured rate across
	// a window boundary. That is inherent to the strategy, not a defect.
	StrategyFixedWindow Strategy = "fixed_window"
)

// Config holds rate limiter configuration.
type Config struct {
	// RequestsPerMinute is the long-run average rate limit per client.
	RequestsPerMinute int

	// BurstSize caps instantaneous bursts. Only the token bucket strategy
	// uses it; window strategies derive everything from RequestsPerMinute.
	BurstSize int

	// Strategy selects the algorithm (default: StrategyTokenBucket).
	Strategy Strategy
}

// Validate checks the configuration for construction-time errors.
func (c Config) Validate() error {
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("%w: requests per minute must be positive, got %d", ErrInvalidConfig, c.RequestsPerMinute)
	}
	switch c.Strategy {
	case StrategyTokenBucket, "":
		if c.BurstSize <= 0 {
			return fmt.Errorf("%w: burst size must be positive, got %d", ErrInvalidConfig, c.BurstSize)
		}
	case StrategySlidingWindow, StrategyFixedWindow:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	return nil
}

// Option configures a MemoryLimiter.
type Option func(*MemoryLimiter)

// WithClock overrides the time source. Useful for deterministic tests;
// the clock must never run backwards.
func WithClock(now func() time.Time) Option {
	return func(m *MemoryLimiter) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCleanupInterval sets how often the background sweep looks for stale
// client records. Set to 0 to disable automatic cleanup.
func WithCleanupInterval(interval time.Duration) Option {
	return func(m *MemoryLimiter) {
		m.cleanupInterval = interval
	}
}

// WithStaleThreshold sets how long a client record may stay untouched
// before the sweep evicts it. Records are self-describing, so eviction
// never changes an admission decision.
func WithStaleThreshold(threshold time.Duration) Option {
	return func(m *MemoryLimiter) {
		if threshold > 0 {
			m.staleThreshold = threshold
		}
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout for Stop.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(m *MemoryLimiter) {
		if timeout > 0 {
			m.shutdownTimeout = timeout
		}
	}
}

// WithLogger sets the logger for background operations.
func WithLogger(logger *slog.Logger) Option {
	return func(m *MemoryLimiter) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates an in-memory limiter for the configured strategy.
// Call Start (or Run) to begin background cleanup of stale client records.
func New(cfg Config, opts ...Option) (*MemoryLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &MemoryLimiter{
		cfg:             cfg,
		now:             time.Now,
		cleanupInterval: 5 * time.Minute,
		staleThreshold:  time.Hour,
		shutdownTimeout: 30 * time.Second,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	switch cfg.Strategy {
	case StrategySlidingWindow:
		m.strategy = newSlidingWindow(cfg)
	case StrategyFixedWindow:
		m.strategy = newFixedWindow(cfg)
	default:
		m.strategy = newTokenBucket(cfg)
	}

	return m, nil
}
