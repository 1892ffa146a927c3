package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key (usually the client IP).
type RateLimiter struct {
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	every    rate.Limit
	mu       sync.Mutex
}

// New allows limit requests per window for each key, refilled evenly.
func New(limit int, window time.Duration) *RateLimiter {
	every := rate.Limit(0)
	if limit > 0 && window > 0 {
		every = rate.Every(window / time.Duration(limit))
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		every:    every,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Allow checks if a request is allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.get(key).Allow()
}

// GetRemaining returns the number of remaining requests for the given key
func (rl *RateLimiter) GetRemaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	remaining := int(rl.get(key).Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RetryAfter returns how long the key must wait for its next token.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.every == 0 {
		return rl.window
	}
	r := rl.get(key).Reserve()
	delay := r.Delay()
	r.Cancel()
	return delay
}

// GetResetTime returns the time when the rate limit will reset for the given key
func (rl *RateLimiter) GetResetTime(key string) time.Time {
	return time.Now().Add(rl.RetryAfter(key))
}

// Limit returns the configured burst size
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Reset clears the rate limit for the given key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.visitors, key)
}

// Cleanup removes keys idle for longer than one window
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// StartCleanup runs Cleanup on every tick until stop is closed
func (rl *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
