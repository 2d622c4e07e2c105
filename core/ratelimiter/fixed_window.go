package ratelimiter

import (
	"sync"
	"time"
)

// fixedWindow counts requests in discrete one-minute buckets. A counter
// never resets mid-window; on expiry it resets atomically to 1 for the
// request that triggered the rollover. A burst straddling a boundary can
// therefore reach twice the configured rate, which is inherent to the
// strategy.
type fixedWindow struct {
	mu      sync.Mutex
	clients map[string]*counterEntry

	limit int
}

type counterEntry struct {
	windowStart time.Time
	count       int
	lastSeen    time.Time
}

func newFixedWindow(cfg Config) *fixedWindow {
	return &fixedWindow{
		clients: make(map[string]*counterEntry),
		limit:   cfg.RequestsPerMinute,
	}
}

func (fw *fixedWindow) allow(now time.Time, clientID string) *Result {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	res := &Result{Limit: fw.limit}

	e, ok := fw.clients[clientID]
	if !ok || now.Sub(e.windowStart) >= window {
		fw.clients[clientID] = &counterEntry{windowStart: now, count: 1, lastSeen: now}
		res.allowed = true
		res.Remaining = fw.limit - 1
		res.ResetAt = now.Add(window)
		return res
	}

	e.lastSeen = now
	res.ResetAt = e.windowStart.Add(window)

	if e.count < fw.limit {
		e.count++
		res.allowed = true
		res.Remaining = fw.limit - e.count
		return res
	}

	// Whole seconds left in the current window, never below one.
	secs := int64(window.Seconds()) - int64(now.Sub(e.windowStart).Seconds())
	if secs < 1 {
		secs = 1
	}
	res.retryAfter = time.Duration(secs) * time.Second
	return res
}

func (fw *fixedWindow) reset(clientID string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	delete(fw.clients, clientID)
}

func (fw *fixedWindow) sweep(staleBefore time.Time) int {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	removed := 0
	for id, e := range fw.clients {
		if e.lastSeen.Before(staleBefore) {
			delete(fw.clients, id)
			removed++
		}
	}
	return removed
}

func (fw *fixedWindow) size() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return len(fw.clients)
}
