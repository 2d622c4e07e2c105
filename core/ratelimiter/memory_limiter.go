package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// strategy is the per-algorithm state holder. Implementations own their
// client map and guard it with a single mutex kept to short critical
// sections: the new state is computed and published in one step, so a
// cancelled caller never leaves a record partially updated.
type strategy interface {
	allow(now time.Time, clientID string) *Result
	reset(clientID string)
	sweep(staleBefore time.Time) (removed int)
	size() int
}

// MemoryLimiter tracks per-client admission state in process memory.
// The algorithm is resolved once at construction from Config.Strategy.
//
// Client records are created lazily on first observation and evicted by a
// background sweep once untouched for the stale threshold; each record is
// self-describing, so eviction is always safe.
type MemoryLimiter struct {
	cfg      Config
	strategy strategy
	now      func() time.Time

	// Cleanup configuration
	cleanupInterval time.Duration
	staleThreshold  time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger

	// Lifecycle state
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	clientsEvicted atomic.Int64
}

// Stats provides observability counters for monitoring and debugging.
type Stats struct {
	ActiveClients  int   // Clients currently tracked
	ClientsEvicted int64 // Total stale records removed by the sweep
	IsRunning      bool  // Whether the cleanup goroutine is running
}

// Allow checks admission for a single request from the given client.
// It never fails for in-memory state; the error return exists for the
// Limiter contract so distributed implementations can surface faults.
func (m *MemoryLimiter) Allow(ctx context.Context, clientID string) (*Result, error) {
	return m.strategy.allow(m.now(), clientID), nil
}

// Reset unconditionally clears the client's state.
func (m *MemoryLimiter) Reset(ctx context.Context, clientID string) error {
	m.strategy.reset(clientID)
	return nil
}

// Start begins the background cleanup loop. It blocks until the context is
// cancelled; use Run for errgroup-style coordination or call it in a
// goroutine.
func (m *MemoryLimiter) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	if m.cleanupInterval <= 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: cleanup interval must be > 0, got %v", ErrInvalidConfig, m.cleanupInterval)
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.running.Store(true)
	defer m.running.Store(false)

	m.logger.InfoContext(m.ctx, "rate limiter cleanup started",
		slog.Duration("cleanup_interval", m.cleanupInterval),
		slog.Duration("stale_threshold", m.staleThreshold))

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.InfoContext(context.Background(), "rate limiter cleanup stopping")
			return m.ctx.Err()
		case <-ticker.C:
			m.sweepWithWait()
		}
	}
}

// Stop gracefully shuts down the background cleanup with a timeout.
func (m *MemoryLimiter) Stop() error {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return ErrNotStarted
	}
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	cancel()

	ctx, ctxCancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer ctxCancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		m.logger.WarnContext(context.Background(), "rate limiter shutdown timeout exceeded",
			slog.Duration("timeout", m.shutdownTimeout))
		return fmt.Errorf("shutdown timeout exceeded after %s", m.shutdownTimeout)
	}
}

// Run provides errgroup compatibility: the returned function starts the
// cleanup loop and shuts it down gracefully when the context is cancelled.
func (m *MemoryLimiter) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- m.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = m.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Sweep removes client records untouched for the stale threshold and
// returns how many were evicted. The background loop calls this on every
// tick; it is exported for deployments that schedule cleanup themselves.
func (m *MemoryLimiter) Sweep() int {
	removed := m.strategy.sweep(m.now().Add(-m.staleThreshold))
	if removed > 0 {
		m.clientsEvicted.Add(int64(removed))
		m.logger.Debug("evicted stale rate limit records", slog.Int("removed", removed))
	}
	return removed
}

// Stats returns current limiter statistics. Safe to call at any time.
func (m *MemoryLimiter) Stats() Stats {
	m.mu.Lock()
	isRunning := m.cancel != nil
	m.mu.Unlock()

	return Stats{
		ActiveClients:  m.strategy.size(),
		ClientsEvicted: m.clientsEvicted.Load(),
		IsRunning:      isRunning,
	}
}

// Healthcheck validates that the limiter is operational. Suitable for use
// in readiness endpoints.
func (m *MemoryLimiter) Healthcheck(ctx context.Context) error {
	if m.cleanupInterval > 0 && !m.Stats().IsRunning {
		return fmt.Errorf("cleanup is configured but not running")
	}
	return nil
}

func (m *MemoryLimiter) sweepWithWait() {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	defer m.wg.Done()
	m.Sweep()
}
