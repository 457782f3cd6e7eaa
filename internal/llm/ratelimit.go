package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter is a token bucket refilled continuously at requestsPerMinute.
type rateLimiter struct {
	last     time.Time
	now      func() time.Time
	tokens   float64
	capacity float64
	perSec   float64
	mu       sync.Mutex
}

// newRateLimiter creates a new rate limiter with the specified requests per minute.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	capacity := float64(requestsPerMinute)
	return &rateLimiter{
		last:     time.Now(),
		now:      time.Now,
		tokens:   capacity,
		capacity: capacity,
		perSec:   capacity / 60,
	}
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		delay := rl.reserve()
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until one is available.
func (rl *rateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.tokens += now.Sub(rl.last).Seconds() * rl.perSec
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.last = now

	if rl.tokens >= 1 {
		rl.tokens--
		return 0
	}
	return time.Duration((1 - rl.tokens) / rl.perSec * float64(time.Second))
}
