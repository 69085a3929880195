package automator

import (
	"context"
	"fmt"
)

// Post and event statuses used by the trigger policies.
const (
	StatusPublish  = "publish"
	StatusCanceled = "canceled"
)

// Payload keys set by the event intake.
const (
	KeyStatus             = "status"
	KeyPostStatus         = "post_status"
	KeyPreviousPostStatus = "previous_post_status"
	KeyPostType           = "post_type"
)

// CanceledEvents accepts an event whose status moved to canceled while the
// post itself is still published.
type CanceledEvents struct {
	posts PostStore
}

func NewCanceledEvents(posts PostStore) *CanceledEvents { return &CanceledEvents{posts: posts} }

func (*CanceledEvents) Name() string { return "canceled_events" }

func (t *CanceledEvents) Validate(ctx context.Context, postID int64, data Payload) bool {
	if data.String(KeyStatus) != StatusCanceled {
		return false
	}
	return isPublished(ctx, t.posts, postID)
}

// NewEvents accepts the first transition of a post into publish.
type NewEvents struct {
	posts PostStore
}

func NewNewEvents(posts PostStore) *NewEvents { return &NewEvents{posts: posts} }

func (*NewEvents) Name() string { return "new_events" }

func (t *NewEvents) Validate(ctx context.Context, postID int64, data Payload) bool {
	if data.String(KeyPostStatus) != StatusPublish {
		return false
	}
	if data.String(KeyPreviousPostStatus) == StatusPublish {
		return false
	}
	return isPublished(ctx, t.posts, postID)
}

// UpdatedEvents accepts changes to a post that was already published and still is.
// Cancellations belong to CanceledEvents.
type UpdatedEvents struct {
	posts PostStore
}

func NewUpdatedEvents(posts PostStore) *UpdatedEvents { return &UpdatedEvents{posts: posts} }

func (*UpdatedEvents) Name() string { return "updated_events" }

func (t *UpdatedEvents) Validate(ctx context.Context, postID int64, data Payload) bool {
	if data.String(KeyPreviousPostStatus) != StatusPublish {
		return false
	}
	if data.String(KeyStatus) == StatusCanceled {
		return false
	}
	return isPublished(ctx, t.posts, postID)
}

func isPublished(ctx context.Context, posts PostStore, postID int64) bool {
	status, err := posts.PostStatus(ctx, postID)
	if err != nil {
		return false
	}
	return status == StatusPublish
}

// Triggers indexes the built-in trigger queues by name.
type Triggers map[string]TriggerQueue

// NewTriggers builds every built-in trigger on top of posts.
func NewTriggers(posts PostStore) Triggers {
	t := Triggers{}
	for _, trigger := range []TriggerQueue{
		NewCanceledEvents(posts),
		NewNewEvents(posts),
		NewUpdatedEvents(posts),
	} {
		t[trigger.Name()] = trigger
	}
	return t
}

// Get returns the trigger registered under name.
func (t Triggers) Get(name string) (TriggerQueue, error) {
	trigger, ok := t[name]
	if !ok {
		return nil, fmt.Errorf("unknown trigger queue %q", name)
	}
	return trigger, nil
}
