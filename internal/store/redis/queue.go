package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/automator/internal/automator"
)

// PushEntry appends an entry to the tail of a queue.
func (s *Store) PushEntry(ctx context.Context, queue string, entry automator.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := s.client.RPush(ctx, QueueKey(queue), data).Err(); err != nil {
		return fmt.Errorf("failed to push entry: %w", err)
	}
	return nil
}

// PopEntries removes up to max entries from the head of a queue in a single
// transaction. max <= 0 drains the whole queue.
func (s *Store) PopEntries(ctx context.Context, queue string, max int) ([]automator.Entry, error) {
	key := QueueKey(queue)

	var rng *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if max <= 0 {
			rng = pipe.LRange(ctx, key, 0, -1)
			pipe.Del(ctx, key)
			return nil
		}
		rng = pipe.LRange(ctx, key, 0, int64(max)-1)
		pipe.LTrim(ctx, key, int64(max), -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pop entries: %w", err)
	}

	return decodeEntries(rng.Val())
}

func (s *Store) QueueLen(ctx context.Context, queue string) (int64, error) {
	n, err := s.client.LLen(ctx, QueueKey(queue)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return n, nil
}

func (s *Store) ClearQueue(ctx context.Context, queue string) error {
	if err := s.client.Del(ctx, QueueKey(queue)).Err(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}

// TrimQueue drops the leading entries queued before the cutoff and returns how
// many were removed. The queue is watched so a concurrent pop aborts the trim.
func (s *Store) TrimQueue(ctx context.Context, queue string, before time.Time) (int64, error) {
	key := QueueKey(queue)
	var removed int64

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return err
		}
		entries, err := decodeEntries(raw)
		if err != nil {
			return err
		}

		removed = 0
		for _, e := range entries {
			if !e.QueuedAt.Before(before) {
				break
			}
			removed++
		}
		if removed == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LTrim(ctx, key, removed, -1)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to trim queue %s: %w", queue, err)
	}
	return removed, nil
}

// QueueNames lists every queue that currently holds entries.
func (s *Store) QueueNames(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, KeyPrefixQueue+"*", 0).Iterator()
	for iter.Next(ctx) {
		if name, ok := QueueName(iter.Val()); ok {
			names = append(names, name)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan queues: %w", err)
	}
	return names, nil
}

func decodeEntries(raw []string) ([]automator.Entry, error) {
	entries := make([]automator.Entry, 0, len(raw))
	for _, item := range raw {
		var e automator.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
