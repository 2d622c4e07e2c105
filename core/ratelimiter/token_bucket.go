package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// tokenBucket keeps one golang.org/x/time/rate limiter per client:
// capacity BurstSize, continuous refill at RequestsPerMinute/60 tokens per
// second. The map mutex only guards record lookup; the per-client limiter
// performs the reserve-or-deny step atomically on its own.
type tokenBucket struct {
	mu      sync.Mutex
	clients map[string]*bucketEntry

	refill rate.Limit
	burst  int
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newTokenBucket(cfg Config) *tokenBucket {
	return &tokenBucket{
		clients: make(map[string]*bucketEntry),
		refill:  rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:   cfg.BurstSize,
	}
}

func (tb *tokenBucket) allow(now time.Time, clientID string) *Result {
	tb.mu.Lock()
	e, ok := tb.clients[clientID]
	if !ok {
		e = &bucketEntry{lim: rate.NewLimiter(tb.refill, tb.burst)}
		tb.clients[clientID] = e
	}
	e.lastSeen = now
	tb.mu.Unlock()

	res := &Result{Limit: tb.burst}

	// With burst >= 1 a single-token reservation always succeeds; the delay
	// tells us whether a token is available right now.
	r := e.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		// Not enough tokens: hand the reservation back so the denied
		// request consumes nothing.
		r.CancelAt(now)
		res.retryAfter = retryAfterSeconds(delay)
		res.ResetAt = now.Add(tb.untilFull(e, now))
		return res
	}

	res.allowed = true
	res.Remaining = max(0, int(e.lim.TokensAt(now)))
	res.ResetAt = now.Add(tb.untilFull(e, now))
	return res
}

// untilFull returns the time needed for the client's bucket to refill to
// capacity at the configured rate.
func (tb *tokenBucket) untilFull(e *bucketEntry, now time.Time) time.Duration {
	missing := float64(tb.burst) - e.lim.TokensAt(now)
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(tb.refill) * float64(time.Second))
}

func (tb *tokenBucket) reset(clientID string) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.clients, clientID)
}

func (tb *tokenBucket) sweep(staleBefore time.Time) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	removed := 0
	for id, e := range tb.clients {
		if e.lastSeen.Before(staleBefore) {
			delete(tb.clients, id)
			removed++
		}
	}
	return removed
}

func (tb *tokenBucket) size() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.clients)
}
