package automator

import "sync"

// Registry is the provider list of one integration's endpoints.
type Registry interface {
	// Register adds the endpoint. Registering an id twice keeps the first endpoint.
	Register(e *Endpoint)
	// List returns the endpoints in registration order.
	List() []*Endpoint
}

// MemoryRegistry is an in-memory Registry safe for concurrent use.
type MemoryRegistry struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint // ID -> Endpoint
	order     []string
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		endpoints: make(map[string]*Endpoint),
	}
}

func (r *MemoryRegistry) Register(e *Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.endpoints[e.ID()]; ok {
		return
	}
	r.endpoints[e.ID()] = e
	r.order = append(r.order, e.ID())
}

func (r *MemoryRegistry) List() []*Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Endpoint, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.endpoints[id])
	}
	return out
}

// Get returns the endpoint registered under id.
func (r *MemoryRegistry) Get(id string) (*Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.endpoints[id]
	return e, ok
}

// Count returns the number of registered endpoints.
func (r *MemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.endpoints)
}
