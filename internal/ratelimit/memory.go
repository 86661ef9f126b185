package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps one live window per key in process memory. The reset
// check and increment run under one lock so racing attempts for the same key
// cannot double-spend or double-reset.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window

	max    int
	period time.Duration
	now    func() time.Time
}

// MemoryLimiterOption configures the limiter.
type MemoryLimiterOption func(*MemoryLimiter)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) MemoryLimiterOption {
	return func(l *MemoryLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewMemoryLimiter builds an in-process window limiter.
func NewMemoryLimiter(maxRequests int, period time.Duration, opts ...MemoryLimiterOption) *MemoryLimiter {
	if maxRequests <= 0 {
		maxRequests = 10
	}
	if period <= 0 {
		period = time.Hour
	}
	l := &MemoryLimiter{
		windows: make(map[string]*window),
		max:     maxRequests,
		period:  period,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Take implements Limiter.
func (l *MemoryLimiter) Take(_ context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}
	w.count++

	return Result{
		Allowed: w.count <= l.max,
		Count:   w.count,
		Limit:   l.max,
		ResetAt: w.resetAt,
	}, nil
}
