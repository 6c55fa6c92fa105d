// Package memory provides a thread-safe in-memory implementation of storage.Repository.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/architected-by-miguel/sitecms/storage"
)

// Repository is a thread-safe in-memory implementation of storage.Repository.
// Entries are lost on restart and are not shared between processes.
type Repository struct {
	mu   sync.Mutex
	data map[string]storage.Entry
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository creates a new empty in-memory Repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]storage.Entry)}
}

func (r *Repository) Hit(_ context.Context, key string, now time.Time, window time.Duration) (storage.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.data[key]
	next := storage.Next(current, ok, now, window)
	r.data[key] = next
	return next, nil
}

func (r *Repository) Sweep(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for key, entry := range r.data {
		if entry.Expired(now) {
			delete(r.data, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked keys.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}
