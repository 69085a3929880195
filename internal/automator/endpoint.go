package automator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/automator/internal/logger"
)

// Type is the category of an endpoint.
type Type string

const (
	TypeQueue  Type = "queue"
	TypeSearch Type = "search"
	TypeAction Type = "action"
)

// Valid reports whether t is a known endpoint type.
func (t Type) Valid() bool {
	switch t {
	case TypeQueue, TypeSearch, TypeAction:
		return true
	}
	return false
}

// Definition is the static description of an endpoint, as found in the catalog.
type Definition struct {
	ID          string   `yaml:"id"`
	DisplayName string   `yaml:"display_name"`
	Path        string   `yaml:"path"`
	Type        Type     `yaml:"type"`
	Trigger     string   `yaml:"trigger,omitempty"`    // trigger queue name, queue endpoints only
	PostType    string   `yaml:"post_type,omitempty"`  // post type searched or created
	ResultKey   string   `yaml:"result_key,omitempty"` // wrapper key of search results
	Dependents  []string `yaml:"dependents,omitempty"` // plugin slugs required to function
}

// Details is the persisted mutable state of an endpoint.
type Details struct {
	Enabled    bool      `json:"enabled"`
	LastAccess time.Time `json:"last_access"`
	AppName    string    `json:"app_name,omitempty"`
}

// View is the dashboard entry of an endpoint.
type View struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	Type              Type   `json:"type"`
	Path              string `json:"path"`
	Enabled           bool   `json:"enabled"`
	LastAccess        string `json:"last_access"`
	AppName           string `json:"app_name,omitempty"`
	MissingDependency bool   `json:"missing_dependency"`
	Count             int64  `json:"count"`
}

// LastAccessFormat is how last access is rendered on the dashboard.
const LastAccessFormat = "2006-01-02 15:04:05"

// Dependencies tells which plugin slugs are active.
type Dependencies interface {
	Active(slug string) bool
}

// PluginSet is a static Dependencies.
type PluginSet map[string]struct{}

func NewPluginSet(slugs ...string) PluginSet {
	s := make(PluginSet, len(slugs))
	for _, slug := range slugs {
		s[slug] = struct{}{}
	}
	return s
}

func (s PluginSet) Active(slug string) bool {
	_, ok := s[slug]
	return ok
}

// EndpointOptions carries the collaborators of an endpoint.
type EndpointOptions struct {
	Options      OptionsStore
	Queue        *Queue // required for queue endpoints, ignored otherwise
	Dependencies Dependencies
	Mirror       Mirror
	Logger       logger.Logger
	Now          func() time.Time
}

// Endpoint is one automation capability exposed as a REST route.
type Endpoint struct {
	integration Integration
	def         Definition
	options     OptionsStore
	queue       *Queue
	deps        Dependencies
	mirror      Mirror
	logger      logger.Logger
	now         func() time.Time
}

// NewEndpoint binds a definition to its integration and stores.
func NewEndpoint(integration Integration, def Definition, opts EndpointOptions) (*Endpoint, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("endpoint definition without id in %s", integration.ID)
	}
	if !def.Type.Valid() {
		return nil, fmt.Errorf("endpoint %s: unknown type %q", def.ID, def.Type)
	}
	if def.Type == TypeQueue && opts.Queue == nil {
		return nil, fmt.Errorf("endpoint %s: queue endpoint without a queue", def.ID)
	}
	if opts.Options == nil {
		return nil, fmt.Errorf("endpoint %s: options store is required", def.ID)
	}

	e := &Endpoint{
		integration: integration,
		def:         def,
		options:     opts.Options,
		deps:        opts.Dependencies,
		mirror:      opts.Mirror,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if def.Type == TypeQueue {
		e.queue = opts.Queue
	}
	if e.deps == nil {
		e.deps = PluginSet{}
	}
	if e.mirror == nil {
		e.mirror = nopMirror{}
	}
	if e.logger == nil {
		e.logger = logger.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.logger = e.logger.With(
		logger.String("integration", integration.ID),
		logger.String("endpoint", def.ID))
	return e, nil
}

func (e *Endpoint) ID() string               { return e.def.ID }
func (e *Endpoint) OptionID() string         { return e.integration.OptionPrefix + e.def.ID }
func (e *Endpoint) Path() string             { return e.def.Path }
func (e *Endpoint) Type() Type               { return e.def.Type }
func (e *Endpoint) DisplayName() string      { return e.def.DisplayName }
func (e *Endpoint) Integration() Integration { return e.integration }
func (e *Endpoint) Definition() Definition   { return e.def }
func (e *Endpoint) Queue() *Queue            { return e.queue }
func (e *Endpoint) Dependents() []string     { return append([]string(nil), e.def.Dependents...) }

// Route is the full REST route, ex: /tribe/zapier/v1/canceled-events.
func (e *Endpoint) Route() string {
	return "/" + e.integration.Namespace() + e.def.Path
}

// AddToDashboard registers the endpoint in the integration's provider list.
func (e *Endpoint) AddToDashboard(r Registry) {
	r.Register(e)
}

// MissingDependency reports whether one of the dependents is not active.
func (e *Endpoint) MissingDependency() bool {
	for _, slug := range e.def.Dependents {
		if !e.deps.Active(slug) {
			return true
		}
	}
	return false
}

// SavedDetails loads the persisted state. An endpoint that was never saved is disabled.
func (e *Endpoint) SavedDetails(ctx context.Context) (Details, error) {
	raw, ok, err := e.options.GetOption(ctx, e.OptionID())
	if err != nil {
		return Details{}, fmt.Errorf("failed to load %s: %w", e.OptionID(), err)
	}
	if !ok {
		return Details{}, nil
	}

	var d Details
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Details{}, fmt.Errorf("failed to decode %s: %w", e.OptionID(), err)
	}
	return d, nil
}

// Enabled reports the persisted enabled flag. Store errors read as disabled.
func (e *Endpoint) Enabled(ctx context.Context) bool {
	d, err := e.SavedDetails(ctx)
	if err != nil {
		e.logger.Warn("failed to read endpoint details", logger.Error(err))
		return false
	}
	return d.Enabled
}

// SetDetails persists the state and reports success. Failures are logged, never returned.
func (e *Endpoint) SetDetails(ctx context.Context, d Details) bool {
	data, err := json.Marshal(d)
	if err != nil {
		e.logger.Error("failed to encode endpoint details", logger.Error(err))
		return false
	}
	if err := e.options.SetOption(ctx, e.OptionID(), string(data)); err != nil {
		e.logger.Error("failed to save endpoint details", logger.Error(err))
		return false
	}
	return true
}

// SetEnabled flips availability, keeping last access untouched.
func (e *Endpoint) SetEnabled(ctx context.Context, enabled bool) bool {
	d, err := e.SavedDetails(ctx)
	if err != nil {
		e.logger.Warn("overwriting unreadable endpoint details", logger.Error(err))
		d = Details{}
	}
	d.Enabled = enabled
	return e.SetDetails(ctx, d)
}

// SetLastAccess stamps the current time and the name of the calling app.
func (e *Endpoint) SetLastAccess(ctx context.Context, appName string) bool {
	d, err := e.SavedDetails(ctx)
	if err != nil {
		e.logger.Warn("overwriting unreadable endpoint details", logger.Error(err))
		d = Details{}
	}
	d.LastAccess = e.now().UTC()
	d.AppName = appName
	return e.SetDetails(ctx, d)
}

// ClearLastAccess forgets the last access and app name.
func (e *Endpoint) ClearLastAccess(ctx context.Context) bool {
	d, err := e.SavedDetails(ctx)
	if err != nil {
		e.logger.Warn("overwriting unreadable endpoint details", logger.Error(err))
		d = Details{}
	}
	d.LastAccess = time.Time{}
	d.AppName = ""
	return e.SetDetails(ctx, d)
}

// AddToQueue hands the event to the trigger queue. queued is false when the
// endpoint has no queue, is disabled, or the trigger rejected the event;
// err is only set when storage fails.
func (e *Endpoint) AddToQueue(ctx context.Context, postID int64, data Payload) (queued bool, err error) {
	if e.queue == nil {
		return false, nil
	}
	if !e.Enabled(ctx) {
		return false, nil
	}

	entry, err := e.queue.Add(ctx, postID, data)
	if err != nil {
		return false, err
	}
	if entry == nil {
		e.logger.Debug("trigger rejected post", logger.Int64("post_id", postID))
		return false, nil
	}

	if err := e.mirror.Mirror(ctx, e.integration.ID, e.def.ID, *entry); err != nil {
		e.logger.Warn("failed to mirror queued entry",
			logger.String("entry_id", entry.ID),
			logger.Error(err))
	}
	return true, nil
}

// View builds the dashboard entry.
func (e *Endpoint) View(ctx context.Context) (View, error) {
	d, err := e.SavedDetails(ctx)
	if err != nil {
		return View{}, err
	}

	v := View{
		ID:                e.def.ID,
		DisplayName:       e.def.DisplayName,
		Type:              e.def.Type,
		Path:              e.def.Path,
		Enabled:           d.Enabled,
		LastAccess:        "-",
		AppName:           d.AppName,
		MissingDependency: e.MissingDependency(),
	}
	if !d.LastAccess.IsZero() {
		v.LastAccess = d.LastAccess.Format(LastAccessFormat)
	}
	if e.queue != nil {
		n, err := e.queue.Len(ctx)
		if err != nil {
			return View{}, err
		}
		v.Count = n
	}
	return v, nil
}
