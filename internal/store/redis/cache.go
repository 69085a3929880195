package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetCache stores a value for ttl. A zero ttl never expires.
func (s *Store) SetCache(ctx context.Context, name, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, CacheKey(name), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", name, err)
	}
	return nil
}

// GetCache reports a miss with ok == false.
func (s *Store) GetCache(ctx context.Context, name string) (string, bool, error) {
	v, err := s.client.Get(ctx, CacheKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil // Cache miss
		}
		return "", false, fmt.Errorf("failed to get cached %s: %w", name, err)
	}
	return v, true, nil
}
