// Package storage provides the storage abstraction for fixed-window
// request counters used by the rate limiter.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by a file-backed store used after Close.
var ErrClosed = errors.New("store closed")

// Entry is a counter window for a single key.
type Entry struct {
	Count int `json:"count"`
	// ResetAt is the window end in unix milliseconds.
	ResetAt int64 `json:"resetAt"`
}

// ResetTime returns ResetAt as a time.Time.
func (e Entry) ResetTime() time.Time {
	return time.UnixMilli(e.ResetAt)
}

// Expired reports whether the window closed before now.
func (e Entry) Expired(now time.Time) bool {
	return e.ResetAt < now.UnixMilli()
}

// Next applies one hit to the current entry (found=false when there is none)
// and returns the updated entry. A missing or expired entry starts a new
// window with a count of one; otherwise the count is incremented.
func Next(current Entry, found bool, now time.Time, window time.Duration) Entry {
	if !found || current.Expired(now) {
		return Entry{Count: 1, ResetAt: now.Add(window).UnixMilli()}
	}
	current.Count++
	return current
}

// Repository persists counter windows keyed by an opaque string.
type Repository interface {
	// Hit atomically records one hit for key and returns the updated entry.
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (Entry, error)
	// Sweep removes entries whose window closed before now and reports how
	// many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
