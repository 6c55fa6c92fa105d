// Package bbolt provides a BBolt-backed storage repository.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"github.com/architected-by-miguel/sitecms/storage"
)

var bucketName = []byte("ratelimit")

// Store implements storage.Repository backed by a BBolt database. Counters
// survive restarts of a single process; the file cannot be shared.
type Store struct {
	db     *bbolt.DB
	closed atomic.Bool
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Repository backed by the given BBolt database.
func NewRepository(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// NewRepositoryFromFile opens a BBolt database at the given path and returns a new Repository.
func NewRepositoryFromFile(path string, options *bbolt.Options) (*Store, error) {
	if options == nil {
		options = &bbolt.Options{Timeout: time.Second}
	}
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := NewRepository(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying BBolt database. Later calls to Hit and Sweep
// return storage.ErrClosed.
func (s *Store) Close() error {
	s.closed.Store(true)
	return s.db.Close()
}

func (s *Store) Hit(_ context.Context, key string, now time.Time, window time.Duration) (storage.Entry, error) {
	if s.closed.Load() {
		return storage.Entry{}, storage.ErrClosed
	}
	var next storage.Entry
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		var current storage.Entry
		data := b.Get([]byte(key))
		found := data != nil
		if found {
			if err := json.Unmarshal(data, &current); err != nil {
				// A corrupt record starts a new window.
				found = false
			}
		}
		next = storage.Next(current, found, now, window)
		out, err := json.Marshal(next)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), out)
	})
	if err != nil {
		return storage.Entry{}, fmt.Errorf("recording hit for %s: %w", key, err)
	}
	return next, nil
}

func (s *Store) Sweep(_ context.Context, now time.Time) (int, error) {
	if s.closed.Load() {
		return 0, storage.ErrClosed
	}
	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		var expired [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var e storage.Entry
			if err := json.Unmarshal(v, &e); err != nil || e.Expired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sweeping expired entries: %w", err)
	}
	return removed, nil
}
