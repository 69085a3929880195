package redis

import (
	"context"
	"fmt"
)

// Dismiss records that user dismissed the notification slug.
func (s *Store) Dismiss(ctx context.Context, user, slug string) error {
	if err := s.client.SAdd(ctx, DismissedKey(user), slug).Err(); err != nil {
		return fmt.Errorf("failed to dismiss %s: %w", slug, err)
	}
	return nil
}

// Dismissed returns the slugs user dismissed.
func (s *Store) Dismissed(ctx context.Context, user string) ([]string, error) {
	slugs, err := s.client.SMembers(ctx, DismissedKey(user)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get dismissed notifications: %w", err)
	}
	return slugs, nil
}
