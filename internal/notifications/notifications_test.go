package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/automator/internal/logger"
)

type memStore struct {
	options   map[string]string
	cache     map[string]string
	cacheSets int
	dismissed map[string][]string
}

func newMemStore() *memStore {
	return &memStore{options: map[string]string{}, cache: map[string]string{}, dismissed: map[string][]string{}}
}

func (m *memStore) SetOption(_ context.Context, key, value string) error {
	m.options[key] = value
	return nil
}

func (m *memStore) GetCache(_ context.Context, name string) (string, bool, error) {
	v, ok := m.cache[name]
	return v, ok, nil
}

func (m *memStore) SetCache(_ context.Context, name, value string, _ time.Duration) error {
	m.cache[name] = value
	m.cacheSets++
	return nil
}

func (m *memStore) Dismiss(_ context.Context, user, slug string) error {
	m.dismissed[user] = append(m.dismissed[user], slug)
	return nil
}

func (m *memStore) Dismissed(_ context.Context, user string) ([]string, error) {
	return m.dismissed[user], nil
}

func TestRegisterPlugins(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := New(store, Options{})

	tests := []struct {
		name  string
		page  string
		opted bool
		want  bool
	}{
		{"other page", "edit.php", false, false},
		{"plugins page first time", PluginsPage, false, true},
		{"plugins page unchanged", PluginsPage, false, false},
		{"opt-in always writes", "", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.RegisterPlugins(ctx, tt.page, tt.opted)
			if err != nil {
				t.Fatalf("RegisterPlugins() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RegisterPlugins() = %v, want %v", got, tt.want)
			}
		})
	}
	if store.cache[SlugsCache] != `["the-events-calendar","event-tickets"]` {
		t.Errorf("cached slugs = %s", store.cache[SlugsCache])
	}
}

func TestRegisterPluginsRewritesChangedList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.cache[SlugsCache] = `["the-events-calendar"]`

	written, _ := New(store, Options{}).RegisterPlugins(ctx, PluginsPage, false)
	if !written {
		t.Fatal("changed slug list was not cached")
	}
}

func TestPagesAndIcon(t *testing.T) {
	s := New(newMemStore(), Options{PluginSlugs: []string{"tribe-filterbar", "event-tickets"}})

	if !s.IsIANPage("edit-tribe_events") || s.IsIANPage("dashboard") {
		t.Error("IsIANPage() mismatch")
	}
	if len(s.PluginSlugs()) != 3 {
		t.Errorf("PluginSlugs() = %v", s.PluginSlugs())
	}

	tests := []struct {
		slug, screen string
		want         bool
	}{
		{"the-events-calendar", "tribe_events", true},
		{"tribe-filterbar", "tribe_events", true},
		{"the-events-calendar", "dashboard", false},
		{"unknown", "tribe_events", false},
	}
	for _, tt := range tests {
		if got := s.ShowIcon(tt.slug, tt.screen); got != tt.want {
			t.Errorf("ShowIcon(%s, %s) = %v, want %v", tt.slug, tt.screen, got, tt.want)
		}
	}
}

func TestOptIn(t *testing.T) {
	store := newMemStore()
	if err := New(store, Options{}).OptIn(context.Background()); err != nil {
		t.Fatalf("OptIn() error = %v", err)
	}
	if store.options[OptInOption] != "1" {
		t.Errorf("opt-in option = %q", store.options[OptInOption])
	}
	if store.cacheSets != 1 {
		t.Errorf("slugs cached %d times, want 1", store.cacheSets)
	}
}

func TestFeedFiltersDismissed(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := New(store, Options{})

	all, err := s.Feed(ctx, "admin")
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Feed() returned %d notifications, want 3", len(all))
	}

	if err := s.Dismiss(ctx, "admin", "TEC-Update-664"); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	// not dismissible, stays
	_ = s.Dismiss(ctx, "admin", "fbar-upgrade-556")

	list, _ := s.Feed(ctx, "admin")
	if len(list) != 2 || list[0].Slug != "event-tickets-upsell" || list[1].Slug != "fbar-upgrade-556" {
		t.Fatalf("Feed() after dismiss = %+v", list)
	}
	if other, _ := s.Feed(ctx, "editor"); len(other) != 3 {
		t.Fatalf("dismissal leaked to another user")
	}
}

func TestDismissInvalidSlug(t *testing.T) {
	s := New(newMemStore(), Options{})
	for _, slug := range []string{"", "   ", "!!!"} {
		if err := s.Dismiss(context.Background(), "admin", slug); !errors.Is(err, ErrInvalidSlug) {
			t.Errorf("Dismiss(%q) err = %v", slug, err)
		}
	}
}

func TestSanitizeKey(t *testing.T) {
	if got := SanitizeKey("Black Friday_2024!"); got != "blackfriday_2024" {
		t.Fatalf("SanitizeKey() = %q", got)
	}
}

func TestRemoteFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"notifications":[{"id":"1","slug":"remote","title":"Remote","dismissible":true}]}`))
	}))
	defer srv.Close()

	list, err := NewRemoteFeed(srv.URL, time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(list) != 1 || list[0].Slug != "remote" {
		t.Fatalf("Fetch() = %+v", list)
	}
}

func TestFallbackFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	fallback, _ := NewFileFeed("")
	feed := NewFallbackFeed(NewRemoteFeed(srv.URL, time.Second), fallback, logger.NewNop())

	list, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("fallback returned %d notifications", len(list))
	}
}

func TestFileFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.yaml")
	content := "notifications:\n  - id: \"9\"\n    slug: local\n    title: Local\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	feed, err := NewFileFeed(path)
	if err != nil {
		t.Fatalf("NewFileFeed() error = %v", err)
	}
	list, _ := feed.Fetch(context.Background())
	if len(list) != 1 || list[0].ID != "9" {
		t.Fatalf("Fetch() = %+v", list)
	}

	if _, err := NewFileFeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("NewFileFeed() of a missing file returned no error")
	}
}
