package automator

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type memOptions struct {
	mu      sync.Mutex
	values  map[string]string
	failSet bool
}

func newMemOptions() *memOptions { return &memOptions{values: map[string]string{}} }

func (m *memOptions) GetOption(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memOptions) SetOption(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("store down")
	}
	m.values[key] = value
	return nil
}

type memQueues struct {
	mu     sync.Mutex
	queues map[string][]Entry
}

func newMemQueues() *memQueues { return &memQueues{queues: map[string][]Entry{}} }

func (m *memQueues) PushEntry(_ context.Context, queue string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[queue] = append(m.queues[queue], e)
	return nil
}

func (m *memQueues) PopEntries(_ context.Context, queue string, max int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queues[queue]
	if max <= 0 || max > len(q) {
		max = len(q)
	}
	out := append([]Entry(nil), q[:max]...)
	m.queues[queue] = q[max:]
	return out, nil
}

func (m *memQueues) QueueLen(_ context.Context, queue string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.queues[queue])), nil
}

func (m *memQueues) ClearQueue(_ context.Context, queue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queues, queue)
	return nil
}

type memPosts struct {
	posts map[int64]*Post
	err   error
}

func newMemPosts(posts ...Post) *memPosts {
	m := &memPosts{posts: map[int64]*Post{}}
	for i := range posts {
		p := posts[i]
		m.posts[p.ID] = &p
	}
	return m
}

func (m *memPosts) PostStatus(_ context.Context, id int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if p, ok := m.posts[id]; ok {
		return p.Status, nil
	}
	return "", nil
}

func (m *memPosts) GetPost(_ context.Context, id int64) (*Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (m *memPosts) SavePost(_ context.Context, p *Post) error {
	m.posts[p.ID] = p
	return nil
}

func (m *memPosts) NextPostID(context.Context) (int64, error) {
	return int64(len(m.posts) + 1), nil
}

func (m *memPosts) FindPosts(_ context.Context, postType, search string, limit int) ([]Post, error) {
	var out []Post
	for _, p := range m.posts {
		if p.Type == postType && strings.Contains(p.Title, search) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// staticTrigger accepts or rejects everything.
type staticTrigger bool

func (staticTrigger) Name() string { return "static" }

func (s staticTrigger) Validate(context.Context, int64, Payload) bool { return bool(s) }

type recordingMirror struct{ entries []Entry }

func (r *recordingMirror) Mirror(_ context.Context, _, _ string, e Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func newTestEndpoint(t interface{ Fatalf(string, ...any) }, def Definition, opts EndpointOptions) *Endpoint {
	if opts.Options == nil {
		opts.Options = newMemOptions()
	}
	e, err := NewEndpoint(Zapier, def, opts)
	if err != nil {
		t.Fatalf("NewEndpoint(%s): %v", def.ID, err)
	}
	return e
}
