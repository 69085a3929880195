package automator

import (
	"context"
	"fmt"
	"sort"
)

// Manager aggregates the endpoints of one integration for a single request.
// The list is captured from the registry at construction and left unsorted.
type Manager struct {
	integration Integration
	actions     Actions
	templates   *Templates
	endpoints   []*Endpoint
}

// NewManager snapshots the registry of an integration.
func NewManager(integration Integration, actions Actions, templates *Templates, registry Registry) *Manager {
	return &Manager{
		integration: integration,
		actions:     actions,
		templates:   templates,
		endpoints:   registry.List(),
	}
}

func (m *Manager) Integration() Integration { return m.integration }
func (m *Manager) Actions() Actions         { return m.actions }
func (m *Manager) Templates() *Templates    { return m.templates }

// Endpoints returns the endpoints as provided by the registry.
func (m *Manager) Endpoints() []*Endpoint {
	return append([]*Endpoint(nil), m.endpoints...)
}

// Sorted returns the endpoints ordered by id.
func (m *Manager) Sorted() []*Endpoint {
	out := m.Endpoints()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Endpoint looks an endpoint up by id.
func (m *Manager) Endpoint(id string) (*Endpoint, error) {
	for _, e := range m.endpoints {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", m.integration.ID, id, ErrEndpointNotFound)
}

// Enable turns an endpoint on. Endpoints with an inactive dependency stay off.
func (m *Manager) Enable(ctx context.Context, id string) (*Endpoint, error) {
	e, err := m.Endpoint(id)
	if err != nil {
		return nil, err
	}
	if e.MissingDependency() {
		return nil, fmt.Errorf("%s/%s: %w", m.integration.ID, id, ErrMissingDependency)
	}
	if !e.SetEnabled(ctx, true) {
		return nil, fmt.Errorf("%s/%s: %w", m.integration.ID, id, ErrDetailsNotSaved)
	}
	return e, nil
}

// Disable turns an endpoint off. Queue endpoints also lose their pending
// entries and last access.
func (m *Manager) Disable(ctx context.Context, id string) (*Endpoint, error) {
	e, err := m.Endpoint(id)
	if err != nil {
		return nil, err
	}
	if !e.SetEnabled(ctx, false) {
		return nil, fmt.Errorf("%s/%s: %w", m.integration.ID, id, ErrDetailsNotSaved)
	}
	if e.Type() == TypeQueue {
		if err := m.clear(ctx, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// ClearQueue drops the pending entries of a queue endpoint and forgets its last access.
func (m *Manager) ClearQueue(ctx context.Context, id string) (*Endpoint, error) {
	e, err := m.Endpoint(id)
	if err != nil {
		return nil, err
	}
	if e.Queue() == nil {
		return nil, fmt.Errorf("%s/%s: %w", m.integration.ID, id, ErrNotQueueEndpoint)
	}
	if err := m.clear(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (m *Manager) clear(ctx context.Context, e *Endpoint) error {
	if err := e.Queue().Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear %s queue: %w", e.ID(), err)
	}
	if !e.ClearLastAccess(ctx) {
		return fmt.Errorf("%s/%s: %w", m.integration.ID, e.ID(), ErrDetailsNotSaved)
	}
	return nil
}

func (m *Manager) EnableConfirmation() string {
	return fmt.Sprintf("Are you sure you want to enable this %s endpoint?", m.integration.Name)
}

// DisableConfirmation warns that queue endpoints lose their pending entries.
func (m *Manager) DisableConfirmation(t Type) string {
	if t == TypeQueue {
		return fmt.Sprintf("Are you sure you want to disable this %s endpoint? "+
			"This action will clear the queue and the last access and cannot be undone.", m.integration.Name)
	}
	return fmt.Sprintf("Are you sure you want to disable this %s endpoint?", m.integration.Name)
}

func (m *Manager) ClearConfirmation() string {
	return fmt.Sprintf("Are you sure you want to clear this %s endpoint queue? "+
		"This action will clear the queue and the last access and cannot be undone.", m.integration.Name)
}
