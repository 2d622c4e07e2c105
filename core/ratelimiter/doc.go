// Package ratelimiter provides per-client admission control with three
// interchangeable strategies behind a single Limiter interface.
//
// The strategy is resolved once at construction; callers never branch on it:
//
//	limiter, err := ratelimiter.New(ratelimiter.Config{
//		RequestsPerMinute: 1000,
//		BurstSize:         100,
//		Strategy:          ratelimiter.StrategyTokenBucket,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := limiter.Allow(ctx, clientIP)
//	if err != nil {
//		// infrastructure fault, not a rate decision
//	}
//	if !result.Allowed() {
//		// deny with result.RetryAfter() as the wait hint
//	}
//
// # Strategies
//
//   - Token bucket (default): continuous refill at RequestsPerMinute/60
//     tokens per second, bursts capped at BurstSize. Built on
//     golang.org/x/time/rate.
//   - Sliding window: exact request timestamps over the trailing minute.
//   - Fixed window: discrete one-minute counters; admits up to 2x the rate
//     across a window boundary, inherent to the strategy.
//
// A client's first request is always admitted (bucket starts full, windows
// start empty), and a denial always carries a retry hint of at least one
// second.
//
// # Memory Management
//
// Client records are created lazily and evicted by a background sweep once
// untouched for the stale threshold. Start the sweep alongside the server:
//
//	go limiter.Start(ctx)        // or g.Go(limiter.Run(ctx)) with errgroup
//	defer limiter.Stop()
//
// All state is per-process. Multi-instance deployments need an external
// shared store, which is out of scope here.
package ratelimiter
