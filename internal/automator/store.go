package automator

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEndpointNotFound  = errors.New("endpoint not found")
	ErrMissingDependency = errors.New("endpoint dependency is not active")
	ErrDetailsNotSaved   = errors.New("endpoint details could not be saved")
	ErrNotQueueEndpoint  = errors.New("endpoint has no trigger queue")
)

// OptionsStore is the persistent key-value store holding endpoint details and admin options.
type OptionsStore interface {
	// GetOption returns the raw value and whether it exists.
	GetOption(ctx context.Context, key string) (string, bool, error)
	SetOption(ctx context.Context, key, value string) error
}

// QueueStore persists trigger queue entries in insertion order.
type QueueStore interface {
	PushEntry(ctx context.Context, queue string, entry Entry) error
	// PopEntries removes and returns up to max entries, oldest first. max <= 0 drains everything.
	PopEntries(ctx context.Context, queue string, max int) ([]Entry, error)
	QueueLen(ctx context.Context, queue string) (int64, error)
	ClearQueue(ctx context.Context, queue string) error
}

// Post is the slice of a domain object the automations care about.
type Post struct {
	ID        int64     `json:"id"`
	Type      string    `json:"post_type"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostStore is the lookup used by trigger validation and the search/action endpoints.
type PostStore interface {
	// PostStatus returns the persisted status, "" when the post does not exist.
	PostStatus(ctx context.Context, id int64) (string, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	SavePost(ctx context.Context, post *Post) error
	NextPostID(ctx context.Context) (int64, error)
	FindPosts(ctx context.Context, postType, search string, limit int) ([]Post, error)
}

// Mirror receives every accepted queue entry. Failures never block queueing.
type Mirror interface {
	Mirror(ctx context.Context, integrationID, endpointID string, entry Entry) error
}

type nopMirror struct{}

func (nopMirror) Mirror(context.Context, string, string, Entry) error { return nil }
