package ratelimiter

import (
	"sync"
	"time"
)

// window is the span all window-based strategies count over.
const window = time.Minute

// slidingWindow keeps the exact timestamps of admitted requests in the
// trailing minute. Exact, at the cost of memory proportional to per-client
// traffic volume.
type slidingWindow struct {
	mu      sync.Mutex
	clients map[string]*windowEntry

	limit int
}

type windowEntry struct {
	times    []time.Time
	lastSeen time.Time
}

func newSlidingWindow(cfg Config) *slidingWindow {
	return &slidingWindow{
		clients: make(map[string]*windowEntry),
		limit:   cfg.RequestsPerMinute,
	}
}

func (sw *slidingWindow) allow(now time.Time, clientID string) *Result {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	e, ok := sw.clients[clientID]
	if !ok {
		e = &windowEntry{}
		sw.clients[clientID] = e
	}
	e.lastSeen = now

	// Drop timestamps that aged out of the trailing window. Shift in place
	// to reuse the underlying array.
	cutoff := now.Add(-window)
	stale := 0
	for stale < len(e.times) && !e.times[stale].After(cutoff) {
		stale++
	}
	if stale > 0 {
		n := copy(e.times, e.times[stale:])
		e.times = e.times[:n]
	}

	res := &Result{Limit: sw.limit}

	if len(e.times) < sw.limit {
		e.times = append(e.times, now)
		res.allowed = true
		res.Remaining = sw.limit - len(e.times)
		res.ResetAt = e.times[0].Add(window)
		return res
	}

	oldest := e.times[0]
	res.retryAfter = retryAfterSeconds(oldest.Add(window).Sub(now))
	res.ResetAt = oldest.Add(window)
	return res
}

func (sw *slidingWindow) reset(clientID string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	delete(sw.clients, clientID)
}

func (sw *slidingWindow) sweep(staleBefore time.Time) int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	removed := 0
	for id, e := range sw.clients {
		if e.lastSeen.Before(staleBefore) {
			delete(sw.clients, id)
			removed++
		}
	}
	return removed
}

func (sw *slidingWindow) size() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return len(sw.clients)
}
