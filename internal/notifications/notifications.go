package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrSnakeDoc/automator/internal/logger"
)

const (
	// NonceAction guards every IAN ajax action.
	NonceAction = "common_ian_nonce"
	// OptInOption is set once the site opted in.
	OptInOption = "ian-client-opt-in"
	// SlugsCache holds the plugin slugs last registered.
	SlugsCache = "tec_ian_slugs"
	// PluginsPage is the only page registering plugins without an opt-in.
	PluginsPage = "plugins.php"
)

var (
	DefaultPluginSlugs  = []string{"the-events-calendar", "event-tickets"}
	DefaultAllowedPages = []string{"tribe_events", "edit-tribe_events", "tribe_events_page_tec-events-settings"}
)

var ErrInvalidSlug = errors.New("invalid slug")

// Store is the persistence IAN needs.
type Store interface {
	SetOption(ctx context.Context, key, value string) error
	GetCache(ctx context.Context, name string) (string, bool, error)
	SetCache(ctx context.Context, name, value string, ttl time.Duration) error
	Dismiss(ctx context.Context, user, slug string) error
	Dismissed(ctx context.Context, user string) ([]string, error)
}

// Options configures the service. Empty lists use the defaults.
type Options struct {
	PluginSlugs  []string
	AllowedPages []string
	Feed         Feed
	Logger       logger.Logger
}

// Service implements the in-admin notifications client.
type Service struct {
	store        Store
	pluginSlugs  []string
	allowedPages []string
	feed         Feed
	logger       logger.Logger
}

func New(store Store, opts Options) *Service {
	s := &Service{
		store:        store,
		pluginSlugs:  mergeSlugs(DefaultPluginSlugs, opts.PluginSlugs),
		allowedPages: opts.AllowedPages,
		feed:         opts.Feed,
		logger:       opts.Logger,
	}
	if len(s.allowedPages) == 0 {
		s.allowedPages = DefaultAllowedPages
	}
	if s.feed == nil {
		s.feed = &FileFeed{data: defaultFeed}
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	return s
}

func mergeSlugs(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, slug := range extra {
		if slug != "" && !slices.Contains(out, slug) {
			out = append(out, slug)
		}
	}
	return out
}

// PluginSlugs returns the plugins showing the notification icon.
func (s *Service) PluginSlugs() []string {
	return append([]string(nil), s.pluginSlugs...)
}

// RegisterPlugins caches the plugin slug list. It only runs on the plugins
// page or on opt-in, and skips when the cached list is unchanged unless opted.
// It reports whether the cache was written.
func (s *Service) RegisterPlugins(ctx context.Context, page string, opted bool) (bool, error) {
	if page != PluginsPage && !opted {
		return false, nil
	}
	if len(s.pluginSlugs) == 0 {
		return false, nil
	}

	want, err := json.Marshal(s.pluginSlugs)
	if err != nil {
		return false, fmt.Errorf("failed to encode plugin slugs: %w", err)
	}

	if !opted {
		cached, ok, err := s.store.GetCache(ctx, SlugsCache)
		if err != nil {
			return false, err
		}
		if ok && cached == string(want) {
			return false, nil
		}
	}

	if err := s.store.SetCache(ctx, SlugsCache, string(want), 0); err != nil {
		return false, err
	}
	return true, nil
}

// IsIANPage reports whether the admin screen shows notifications.
func (s *Service) IsIANPage(screenID string) bool {
	return slices.Contains(s.allowedPages, screenID)
}

// ShowIcon reports whether the icon of plugin slug is shown on the screen.
func (s *Service) ShowIcon(slug, screenID string) bool {
	return slices.Contains(s.pluginSlugs, slug) && s.IsIANPage(screenID)
}

// OptIn records the site opt-in and refreshes the plugin cache.
func (s *Service) OptIn(ctx context.Context) error {
	if err := s.store.SetOption(ctx, OptInOption, "1"); err != nil {
		return err
	}
	if _, err := s.RegisterPlugins(ctx, "", true); err != nil {
		s.logger.Warn("failed to register plugins on opt-in", logger.Error(err))
	}
	return nil
}

// Feed returns the notifications user has not dismissed.
func (s *Service) Feed(ctx context.Context, user string) ([]Notification, error) {
	list, err := s.feed.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	dismissed, err := s.store.Dismissed(ctx, user)
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(list))
	for _, n := range list {
		if n.Dismissible && slices.Contains(dismissed, n.Slug) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Dismiss hides the notification slug for user.
func (s *Service) Dismiss(ctx context.Context, user, slug string) error {
	slug = SanitizeKey(slug)
	if slug == "" {
		return ErrInvalidSlug
	}
	return s.store.Dismiss(ctx, user, slug)
}

// SanitizeKey lowercases key and keeps only a-z, 0-9, - and _.
func SanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
