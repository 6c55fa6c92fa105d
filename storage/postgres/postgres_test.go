package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("SITECMS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SITECMS_TEST_POSTGRES_DSN not set")
	}
	s, err := NewRepositoryFromDSN(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore_HitCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	key := "login:" + uuid.NewString()

	for i := 1; i <= 3; i++ {
		e, err := s.Hit(ctx, key, now.Add(time.Duration(i)*time.Second), time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, e.Count)
		assert.Equal(t, now.Add(time.Second+time.Minute).UnixMilli(), e.ResetAt)
	}
}

func TestPostgresStore_WindowRestartsAndSweeps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	key := "cms:" + uuid.NewString()

	_, err := s.Hit(ctx, key, now, time.Minute)
	require.NoError(t, err)
	_, err = s.Hit(ctx, key, now, time.Minute)
	require.NoError(t, err)

	later := now.Add(2 * time.Minute)
	e, err := s.Hit(ctx, key, later, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count)
	assert.Equal(t, later.Add(time.Minute).UnixMilli(), e.ResetAt)

	removed, err := s.Sweep(ctx, later.Add(2*time.Minute))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 1)

	e, err = s.Hit(ctx, key, later.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count)
}
