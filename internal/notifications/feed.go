package notifications

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/utils"
)

// DefaultFeedURL is the remote IAN feed.
const DefaultFeedURL = "https://ian.stellarwp.com/feed/organization/brand/product.json"

//go:embed feed.yaml
var defaultFeed []byte

// Feed provides the current notifications.
type Feed interface {
	Fetch(ctx context.Context) ([]Notification, error)
}

type feedDocument struct {
	Notifications []Notification `json:"notifications" yaml:"notifications"`
}

// FileFeed serves notifications from a YAML document.
type FileFeed struct {
	data []byte
}

// NewFileFeed reads path, or the built-in feed when path is empty.
func NewFileFeed(path string) (*FileFeed, error) {
	if path == "" {
		return &FileFeed{data: defaultFeed}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}
	if _, err := parseYAML(data); err != nil {
		return nil, err
	}
	return &FileFeed{data: data}, nil
}

func (f *FileFeed) Fetch(context.Context) ([]Notification, error) {
	return parseYAML(f.data)
}

func parseYAML(data []byte) ([]Notification, error) {
	var doc feedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed yaml: %w", err)
	}
	return doc.Notifications, nil
}

// RemoteFeed fetches the JSON feed over HTTP.
type RemoteFeed struct {
	url    string
	client *http.Client
}

func NewRemoteFeed(url string, timeout time.Duration) *RemoteFeed {
	return &RemoteFeed{url: url, client: &http.Client{Timeout: timeout}}
}

func (f *RemoteFeed) Fetch(ctx context.Context) ([]Notification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	var doc feedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return doc.Notifications, nil
}

// FallbackFeed tries primary first and serves fallback when it fails.
type FallbackFeed struct {
	primary  Feed
	fallback Feed
	logger   logger.Logger
}

func NewFallbackFeed(primary, fallback Feed, log logger.Logger) *FallbackFeed {
	return &FallbackFeed{primary: primary, fallback: fallback, logger: log}
}

func (f *FallbackFeed) Fetch(ctx context.Context) ([]Notification, error) {
	if f.primary != nil {
		list, err := f.primary.Fetch(ctx)
		if err == nil {
			return list, nil
		}
		f.logger.Warn("remote notification feed unavailable, using fallback", logger.Error(err))
	}
	return f.fallback.Fetch(ctx)
}
