// Package ratelimit implements per-client fixed-window request throttling on
// top of a pluggable storage.Repository.
package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/architected-by-miguel/sitecms/storage"
)

// Policy describes one independently tracked limit.
type Policy struct {
	// Name namespaces keys so policies sharing a store never interfere.
	Name string
	// Max is the number of requests allowed per window.
	Max    int
	Window time.Duration
}

var (
	// LoginPolicy throttles password attempts.
	LoginPolicy = Policy{Name: "login", Max: 8, Window: 15 * time.Minute}
	// CMSPolicy is shared by the CMS mutation routes.
	CMSPolicy = Policy{Name: "cms", Max: 60, Window: 15 * time.Minute}
	// ContactPolicy throttles contact form submissions.
	ContactPolicy = Policy{Name: "contact", Max: 10, Window: 15 * time.Minute}
)

// Limiter enforces a Policy against a store.
type Limiter struct {
	policy Policy
	store  storage.Repository
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New returns a Limiter for policy backed by store.
func New(store storage.Repository, policy Policy, opts ...Option) *Limiter {
	l := &Limiter{policy: policy, store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the limiter's policy.
func (l *Limiter) Policy() Policy { return l.policy }

// Check records a request from ip and reports whether it exceeds the policy.
// The first Max requests in a window are allowed; every later request in the
// same window is limited. retryAfter is the time left in the window.
func (l *Limiter) Check(ctx context.Context, ip string) (limited bool, retryAfter time.Duration, err error) {
	now := l.now()
	entry, err := l.store.Hit(ctx, l.policy.Name+":"+ip, now, l.policy.Window)
	if err != nil {
		return false, 0, err
	}
	if entry.Count > l.policy.Max {
		return true, entry.ResetTime().Sub(now), nil
	}
	return false, 0, nil
}

// RetryAfterString formats d for a Retry-After header, in whole seconds and
// never less than one.
func RetryAfterString(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
