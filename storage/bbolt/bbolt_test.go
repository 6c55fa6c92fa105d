package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"github.com/architected-by-miguel/sitecms/storage"
)

func newTestDB(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "ratelimit.db"), 0600, nil)
	if err != nil {
		t.Fatalf("could not open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBBoltStorage(t *testing.T) {
	s, err := NewRepository(newTestDB(t))
	if err != nil {
		t.Fatalf("NewRepository failed: %v", err)
	}
	ctx := context.Background()
	now := time.Now()

	t.Run("HitCounts", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			e, err := s.Hit(ctx, "login:10.0.0.1", now, time.Minute)
			if err != nil {
				t.Fatalf("Hit failed: %v", err)
			}
			if e.Count != i {
				t.Errorf("expected count %d, got %d", i, e.Count)
			}
			if e.ResetAt != now.Add(time.Minute).UnixMilli() {
				t.Errorf("unexpected resetAt %d", e.ResetAt)
			}
		}
	})

	t.Run("WindowResets", func(t *testing.T) {
		e, err := s.Hit(ctx, "login:10.0.0.1", now.Add(2*time.Minute), time.Minute)
		if err != nil {
			t.Fatalf("Hit failed: %v", err)
		}
		if e.Count != 1 {
			t.Errorf("expected reset after window, got %d", e.Count)
		}
	})

	t.Run("Sweep", func(t *testing.T) {
		if _, err := s.Hit(ctx, "cms:10.0.0.2", now, time.Second); err != nil {
			t.Fatalf("Hit failed: %v", err)
		}
		removed, err := s.Sweep(ctx, now.Add(time.Minute))
		if err != nil {
			t.Fatalf("Sweep failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 expired entry removed, got %d", removed)
		}
	})
}

func TestBBoltStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratelimit.db")
	ctx := context.Background()
	now := time.Now()

	s, err := NewRepositoryFromFile(path, nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	s.Hit(ctx, "k", now, time.Minute)
	s.Hit(ctx, "k", now, time.Minute)
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	s, err = NewRepositoryFromFile(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	e, err := s.Hit(ctx, "k", now, time.Minute)
	if err != nil {
		t.Fatalf("Hit failed: %v", err)
	}
	if e.Count != 3 {
		t.Errorf("expected count to persist across reopen, got %d", e.Count)
	}
}

func TestBBoltStorageClosed(t *testing.T) {
	s, err := NewRepositoryFromFile(filepath.Join(t.TempDir(), "ratelimit.db"), nil)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	ctx := context.Background()
	if _, err := s.Hit(ctx, "k", time.Now(), time.Minute); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("expected ErrClosed from Hit, got %v", err)
	}
	if _, err := s.Sweep(ctx, time.Now()); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("expected ErrClosed from Sweep, got %v", err)
	}
}
