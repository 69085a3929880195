package automator

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/automator/internal/logger"
)

var canceledDef = Definition{
	ID:          "canceled_events",
	DisplayName: "Canceled Events",
	Path:        "/canceled-events",
	Type:        TypeQueue,
	Trigger:     "canceled_events",
}

func TestNewEndpointValidation(t *testing.T) {
	opts := EndpointOptions{Options: newMemOptions()}

	tests := []struct {
		name string
		def  Definition
		opts EndpointOptions
	}{
		{"missing id", Definition{Type: TypeSearch}, opts},
		{"unknown type", Definition{ID: "x", Type: "stream"}, opts},
		{"queue without queue", Definition{ID: "x", Type: TypeQueue}, opts},
		{"no options store", Definition{ID: "x", Type: TypeSearch}, EndpointOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEndpoint(Zapier, tt.def, tt.opts); err == nil {
				t.Fatalf("NewEndpoint() returned no error")
			}
		})
	}
}

func TestEndpointAccessors(t *testing.T) {
	q := NewQueue("zapier:canceled_events", staticTrigger(true), newMemQueues())
	e := newTestEndpoint(t, canceledDef, EndpointOptions{Queue: q})

	if e.ID() != "canceled_events" {
		t.Errorf("ID() = %q", e.ID())
	}
	if e.OptionID() != "tec_zapier_endpoints_canceled_events" {
		t.Errorf("OptionID() = %q", e.OptionID())
	}
	if e.Path() != "/canceled-events" {
		t.Errorf("Path() = %q", e.Path())
	}
	if e.Type() != TypeQueue {
		t.Errorf("Type() = %q", e.Type())
	}
	if e.Route() != "/tribe/zapier/v1/canceled-events" {
		t.Errorf("Route() = %q", e.Route())
	}
}

func TestSavedDetailsDefaultsToDisabled(t *testing.T) {
	e := newTestEndpoint(t, Definition{ID: "find_events", Type: TypeSearch}, EndpointOptions{})

	d, err := e.SavedDetails(context.Background())
	if err != nil {
		t.Fatalf("SavedDetails(): %v", err)
	}
	if d.Enabled || !d.LastAccess.IsZero() || d.AppName != "" {
		t.Fatalf("SavedDetails() = %+v, want zero value", d)
	}
}

func TestSetDetailsRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEndpoint(t, Definition{ID: "find_events", Type: TypeSearch}, EndpointOptions{})

	want := Details{Enabled: true, LastAccess: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), AppName: "Zapier"}
	if !e.SetDetails(ctx, want) {
		t.Fatalf("SetDetails() = false")
	}
	got, err := e.SavedDetails(ctx)
	if err != nil {
		t.Fatalf("SavedDetails(): %v", err)
	}
	if got.Enabled != want.Enabled || !got.LastAccess.Equal(want.LastAccess) || got.AppName != want.AppName {
		t.Fatalf("SavedDetails() = %+v, want %+v", got, want)
	}

	if !e.SetEnabled(ctx, false) {
		t.Fatalf("SetEnabled(false) = false")
	}
	got, _ = e.SavedDetails(ctx)
	if got.Enabled {
		t.Fatalf("endpoint still enabled")
	}
	if got.AppName != "Zapier" {
		t.Fatalf("SetEnabled lost the app name: %+v", got)
	}
}

func TestSetDetailsReportsFailure(t *testing.T) {
	opts := newMemOptions()
	opts.failSet = true
	e := newTestEndpoint(t, Definition{ID: "find_events", Type: TypeSearch}, EndpointOptions{Options: opts})

	if e.SetDetails(context.Background(), Details{Enabled: true}) {
		t.Fatalf("SetDetails() = true on a failing store")
	}
}

func TestLastAccess(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	e := newTestEndpoint(t, Definition{ID: "find_events", Type: TypeSearch},
		EndpointOptions{Now: func() time.Time { return now }})

	if !e.SetLastAccess(ctx, "My Zap") {
		t.Fatalf("SetLastAccess() = false")
	}
	v, err := e.View(ctx)
	if err != nil {
		t.Fatalf("View(): %v", err)
	}
	if v.LastAccess != "2024-05-06 07:08:09" || v.AppName != "My Zap" {
		t.Fatalf("View() = %+v", v)
	}

	e.ClearLastAccess(ctx)
	v, _ = e.View(ctx)
	if v.LastAccess != "-" || v.AppName != "" {
		t.Fatalf("View() after clear = %+v", v)
	}
}

func TestClearLastAccessWarnsOnUnreadableDetails(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	opts := newMemOptions()
	e := newTestEndpoint(t, Definition{ID: "find_events", Type: TypeSearch},
		EndpointOptions{Options: opts, Logger: logger.FromZap(zap.New(core))})
	opts.values[e.OptionID()] = "{not json"

	if !e.ClearLastAccess(ctx) {
		t.Fatalf("ClearLastAccess() = false")
	}
	if n := logs.FilterMessage("overwriting unreadable endpoint details").Len(); n != 1 {
		t.Fatalf("warnings = %d, want 1", n)
	}
	if d, err := e.SavedDetails(ctx); err != nil || d.AppName != "" || !d.LastAccess.IsZero() {
		t.Fatalf("SavedDetails() = %+v, %v", d, err)
	}
}

func TestAddToQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled endpoint does not queue", func(t *testing.T) {
		queues := newMemQueues()
		e := newTestEndpoint(t, canceledDef, EndpointOptions{Queue: NewQueue("q", staticTrigger(true), queues)})

		queued, err := e.AddToQueue(ctx, 1, Payload{})
		if err != nil || queued {
			t.Fatalf("AddToQueue() = %v, %v", queued, err)
		}
		if n, _ := queues.QueueLen(ctx, "q"); n != 0 {
			t.Fatalf("queue length = %d", n)
		}
	})

	t.Run("rejected event", func(t *testing.T) {
		queues := newMemQueues()
		e := newTestEndpoint(t, canceledDef, EndpointOptions{Queue: NewQueue("q", staticTrigger(false), queues)})
		e.SetEnabled(ctx, true)

		queued, err := e.AddToQueue(ctx, 1, Payload{})
		if err != nil || queued {
			t.Fatalf("AddToQueue() = %v, %v", queued, err)
		}
	})

	t.Run("accepted event is queued and mirrored", func(t *testing.T) {
		queues := newMemQueues()
		mirror := &recordingMirror{}
		e := newTestEndpoint(t, canceledDef, EndpointOptions{
			Queue:  NewQueue("q", staticTrigger(true), queues),
			Mirror: mirror,
		})
		e.SetEnabled(ctx, true)

		queued, err := e.AddToQueue(ctx, 42, Payload{KeyStatus: "canceled"})
		if err != nil || !queued {
			t.Fatalf("AddToQueue() = %v, %v", queued, err)
		}
		entries, _ := e.Queue().Drain(ctx, 0)
		if len(entries) != 1 || entries[0].PostID != 42 || entries[0].ID == "" {
			t.Fatalf("entries = %+v", entries)
		}
		if len(mirror.entries) != 1 || mirror.entries[0].ID != entries[0].ID {
			t.Fatalf("mirrored = %+v", mirror.entries)
		}
	})

	t.Run("non queue endpoint", func(t *testing.T) {
		e := newTestEndpoint(t, Definition{ID: "find_events", Type: TypeSearch}, EndpointOptions{})
		e.SetEnabled(ctx, true)
		if queued, err := e.AddToQueue(ctx, 1, Payload{}); queued || err != nil {
			t.Fatalf("AddToQueue() = %v, %v", queued, err)
		}
	})
}

func TestMissingDependency(t *testing.T) {
	def := Definition{ID: "find_tickets", Type: TypeSearch, Dependents: []string{"tec", "et"}}

	tests := []struct {
		name   string
		active PluginSet
		want   bool
	}{
		{"all active", NewPluginSet("tec", "et"), false},
		{"one missing", NewPluginSet("tec"), true},
		{"none active", NewPluginSet(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEndpoint(t, def, EndpointOptions{Dependencies: tt.active})
			if got := e.MissingDependency(); got != tt.want {
				t.Errorf("MissingDependency() = %v, want %v", got, tt.want)
			}
		})
	}

	e := newTestEndpoint(t, def, EndpointOptions{})
	deps := e.Dependents()
	deps[0] = "changed"
	if got := e.Dependents(); len(got) != 2 || got[0] != "tec" {
		t.Errorf("Dependents() = %v, want a copy of [tec et]", got)
	}
}

func TestQueueDrainOrder(t *testing.T) {
	ctx := context.Background()
	q := NewQueue("q", staticTrigger(true), newMemQueues())
	for i := int64(1); i <= 3; i++ {
		if _, err := q.Add(ctx, i, nil); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}

	first, _ := q.Drain(ctx, 2)
	rest, _ := q.Drain(ctx, 0)
	if len(first) != 2 || first[0].PostID != 1 || first[1].PostID != 2 {
		t.Fatalf("first drain = %+v", first)
	}
	if len(rest) != 1 || rest[0].PostID != 3 {
		t.Fatalf("second drain = %+v", rest)
	}
}
