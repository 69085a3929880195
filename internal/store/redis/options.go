package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// GetOption returns the value of an option and whether it is set.
func (s *Store) GetOption(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, KeyOptions, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get option %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) SetOption(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, KeyOptions, key, value).Err(); err != nil {
		return fmt.Errorf("failed to set option %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteOption(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, KeyOptions, key).Err(); err != nil {
		return fmt.Errorf("failed to delete option %s: %w", key, err)
	}
	return nil
}
