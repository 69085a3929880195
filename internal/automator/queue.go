package automator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payload is the event data a trigger validates.
type Payload map[string]any

// String returns the value at key when it is a non-empty string.
func (p Payload) String(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

// Entry is one queued domain event awaiting pickup by the automation service.
type Entry struct {
	ID       string    `json:"id"`
	PostID   int64     `json:"post_id"`
	Data     Payload   `json:"data,omitempty"`
	QueuedAt time.Time `json:"queued_at"`
}

// TriggerQueue decides whether a domain event belongs in a queue.
type TriggerQueue interface {
	Name() string
	Validate(ctx context.Context, postID int64, data Payload) bool
}

// Queue is an append-only buffer guarded by a trigger's validation.
type Queue struct {
	key     string
	trigger TriggerQueue
	store   QueueStore
	now     func() time.Time
}

// NewQueue builds the queue stored under key.
func NewQueue(key string, trigger TriggerQueue, store QueueStore) *Queue {
	return &Queue{
		key:     key,
		trigger: trigger,
		store:   store,
		now:     time.Now,
	}
}

// Key is the storage name of the queue.
func (q *Queue) Key() string { return q.key }

// Trigger is the validation policy of the queue.
func (q *Queue) Trigger() TriggerQueue { return q.trigger }

// Add validates the event and appends it when accepted. A rejected event
// returns (nil, nil); err is only set when the store fails.
func (q *Queue) Add(ctx context.Context, postID int64, data Payload) (*Entry, error) {
	if !q.trigger.Validate(ctx, postID, data) {
		return nil, nil
	}

	entry := Entry{
		ID:       uuid.NewString(),
		PostID:   postID,
		Data:     data,
		QueuedAt: q.now().UTC(),
	}
	if err := q.store.PushEntry(ctx, q.key, entry); err != nil {
		return nil, fmt.Errorf("failed to queue post %d on %s: %w", postID, q.key, err)
	}
	return &entry, nil
}

// Drain removes up to max entries in insertion order.
func (q *Queue) Drain(ctx context.Context, max int) ([]Entry, error) {
	entries, err := q.store.PopEntries(ctx, q.key, max)
	if err != nil {
		return nil, fmt.Errorf("failed to drain %s: %w", q.key, err)
	}
	return entries, nil
}

// Len returns the number of pending entries.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.store.QueueLen(ctx, q.key)
}

// Clear drops every pending entry.
func (q *Queue) Clear(ctx context.Context) error {
	return q.store.ClearQueue(ctx, q.key)
}
