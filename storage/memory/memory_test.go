package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	now := time.Now()

	t.Run("HitCounts", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			e, err := repo.Hit(ctx, "k1", now, time.Minute)
			if err != nil {
				t.Fatalf("Hit failed: %v", err)
			}
			if e.Count != i {
				t.Errorf("expected count %d, got %d", i, e.Count)
			}
		}
	})

	t.Run("KeysIsolated", func(t *testing.T) {
		e, _ := repo.Hit(ctx, "k2", now, time.Minute)
		if e.Count != 1 {
			t.Errorf("expected fresh key to start at 1, got %d", e.Count)
		}
	})

	t.Run("WindowResets", func(t *testing.T) {
		e, _ := repo.Hit(ctx, "k1", now.Add(2*time.Minute), time.Minute)
		if e.Count != 1 {
			t.Errorf("expected reset after window, got %d", e.Count)
		}
	})

	t.Run("Sweep", func(t *testing.T) {
		removed, err := repo.Sweep(ctx, now.Add(90*time.Second))
		if err != nil {
			t.Fatalf("Sweep failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 expired key removed, got %d", removed)
		}
		if repo.Len() != 1 {
			t.Errorf("expected 1 key left, got %d", repo.Len())
		}
	})
}

func TestMemoryRepositoryConcurrentHits(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.Hit(ctx, "shared", now, time.Minute)
		}()
	}
	wg.Wait()

	e, _ := repo.Hit(ctx, "shared", now, time.Minute)
	if e.Count != 51 {
		t.Errorf("expected 51 hits, got %d", e.Count)
	}
}
