package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound is returned when a post or a connection does not exist.
var ErrNotFound = errors.New("not found")

// Store handles every Redis operation of the service: options, trigger
// queues, posts, notification dismissals, caches and access keys.
type Store struct {
	client   *redis.Client
	hashCost int
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithHashCost sets the bcrypt cost of access secrets.
func WithHashCost(cost int) Option {
	return func(s *Store) { s.hashCost = cost }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client:   client,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
