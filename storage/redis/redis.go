// Package redis provides a Redis-backed storage repository whose counters are
// shared by every process pointed at the same Redis instance.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/architected-by-miguel/sitecms/storage"
)

const defaultPrefix = "sitecms:ratelimit:"

// hitScript increments the counter and starts the window on the first hit.
// It returns {count, remaining ttl in ms}.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Store implements storage.Repository on Redis. Expired windows are removed
// by Redis key expiry.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ storage.Repository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix. Defaults to "sitecms:ratelimit:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewRepository returns a Repository using client.
func NewRepository(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials addr and verifies the connection with a PING.
func Connect(ctx context.Context, addr, password string, opts ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewRepository(client, opts...), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (storage.Entry, error) {
	res, err := hitScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return storage.Entry{}, fmt.Errorf("recording hit for %s: %w", key, err)
	}
	if len(res) != 2 {
		return storage.Entry{}, fmt.Errorf("recording hit for %s: unexpected script result %v", key, res)
	}
	return storage.Entry{
		Count:   int(res[0]),
		ResetAt: now.Add(time.Duration(res[1]) * time.Millisecond).UnixMilli(),
	}, nil
}

// Sweep is a no-op; Redis expires windows itself.
func (s *Store) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
