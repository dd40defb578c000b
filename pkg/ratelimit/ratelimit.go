package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Counter counts the requests recorded for a client address since a point in time.
type Counter interface {
	CountAccessLogsSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)
}

// Policy is the number of requests a client may make per window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy allows 5 requests per minute per client address.
var DefaultPolicy = Policy{Limit: 5, Window: time.Minute}

func (p Policy) String() string {
	return fmt.Sprintf("%d per %s", p.Limit, p.Window)
}

// Limiter answers whether a client address has used up its window. It
// keeps no counters of its own; every check re-counts the persisted access
// log, so it stays correct across restarts of a single instance.
type Limiter struct {
	counter Counter
	policy  atomic.Pointer[Policy]
	now     func() time.Time
}

// New creates a Limiter over counter with the given policy.
func New(counter Counter, policy Policy) *Limiter {
	l := &Limiter{counter: counter, now: time.Now}
	l.SetPolicy(policy)
	return l
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Policy returns the policy currently in force.
func (l *Limiter) Policy() Policy {
	return *l.policy.Load()
}

// SetPolicy swaps the policy. Safe to call while checks are running.
func (l *Limiter) SetPolicy(p Policy) {
	l.policy.Store(&p)
}

// IsRateLimited checks ipAddress against the current policy.
func (l *Limiter) IsRateLimited(ctx context.Context, ipAddress string) (bool, error) {
	p := l.Policy()
	return l.Check(ctx, ipAddress, p.Limit, p.Window)
}

// Check reports whether ipAddress already has limit or more requests in the
// trailing window. A limit of zero or less disables the check.
func (l *Limiter) Check(ctx context.Context, ipAddress string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	since := l.now().UTC().Add(-window)
	count, err := l.counter.CountAccessLogsSince(ctx, ipAddress, since)
	if err != nil {
		return false, fmt.Errorf("failed to count requests for %s: %w", ipAddress, err)
	}
	return count >= int64(limit), nil
}
