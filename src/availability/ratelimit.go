// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a minimum interval between consecutive requests.
//
// Waiting callers are served one per interval regardless of which domain
// they query. A RateLimiter is safe for concurrent use.
type RateLimiter struct {
	mu       sync.RWMutex
	interval time.Duration
	limiter  *rate.Limiter
}

// NewRateLimiter creates a limiter allowing one request per interval.
// A non-positive interval disables limiting.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	interval = max(interval, 0)
	return &RateLimiter{
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next request may be sent or ctx is done.
// It returns an error wrapping [ErrTimeout] when ctx ends first or when
// its deadline would pass before the slot opens.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return deadlineError(ctx, "WHOIS rate limit wait", l.Interval())
		}
		return fmt.Errorf("%w: WHOIS rate limit slot opens after deadline: %v", ErrTimeout, err)
	}
	return nil
}

// SetInterval changes the minimum interval between requests.
func (l *RateLimiter) SetInterval(interval time.Duration) {
	interval = max(interval, 0)
	l.mu.Lock()
	l.interval = interval
	l.mu.Unlock()
	l.limiter.SetLimit(rate.Every(interval))
}

// Interval returns the minimum interval between requests.
func (l *RateLimiter) Interval() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.interval
}
