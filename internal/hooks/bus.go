package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Topic names an event published on the bus.
type Topic string

// TopicPostStatusChanged is published when the status of a post changes.
// Payload: PostStatusChanged.
const TopicPostStatusChanged Topic = "post.status_changed"

// PostStatusChanged is the payload of TopicPostStatusChanged.
type PostStatusChanged struct {
	PostID         int64
	PostType       string
	Status         string // post status
	PreviousStatus string
	EventStatus    string // event lifecycle status, ex: canceled, postponed
}

// HandlerFunc handles one published payload.
type HandlerFunc func(ctx context.Context, payload any) error

var ErrNilHandler = errors.New("hooks: nil handler")

// Subscription identifies a registered handler.
type Subscription struct {
	id    uint64
	topic Topic
}

// Bus is a synchronous in-process publish/subscribe hub. Handlers run in
// subscription order on the publishing goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscriber
	nextID atomic.Uint64
}

type subscriber struct {
	id uint64
	fn HandlerFunc
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscriber)}
}

// Subscribe registers fn for topic.
func (b *Bus) Subscribe(topic Topic, fn HandlerFunc) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return Subscription{id: id, topic: topic}, nil
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[s.topic]
	for i, sub := range list {
		if sub.id == s.id {
			b.subs[s.topic] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Count returns the number of handlers registered for topic.
func (b *Bus) Count(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Publish runs every handler of topic. All handlers run even when some fail;
// their errors are joined. A panicking handler is reported as an error.
func (b *Bus) Publish(ctx context.Context, topic Topic, payload any) error {
	b.mu.RLock()
	list := append([]subscriber(nil), b.subs[topic]...)
	b.mu.RUnlock()

	var errs []error
	for _, sub := range list {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := call(ctx, sub.fn, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func call(ctx context.Context, fn HandlerFunc, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hooks: handler panic: %v", r)
		}
	}()
	return fn(ctx, payload)
}
