package ratelimit

import (
	"context"
	"time"
)

// Limiter allows at most Max hits per identifier in each fixed window.
type Limiter struct {
	store  Store
	name   string
	max    int
	window time.Duration
}

// Result describes one hit.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected client should wait, rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return time.Second
	}
	return (d + time.Second - 1).Truncate(time.Second)
}

// New creates a Limiter. name separates its counters from other limiters on the same store.
func New(store Store, name string, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, name: name, max: max, window: window}
}

// Allow records a hit for id and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, id string) (Result, error) {
	count, resetAt, err := l.store.Incr(ctx, l.name+":"+id, l.window)
	if err != nil {
		return Result{Allowed: true, Limit: l.max, Remaining: l.max}, err
	}
	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
