package process

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/utils"
)

const (
	// Action is the admin ajax action the probe posts to.
	Action = "async_process_support_test"
	// Canary is set by the handler when the probe request came through.
	Canary = "tribe_supports_async_process"
	// CanaryTTL is how long a successful probe is trusted.
	CanaryTTL = time.Hour
)

// Store holds the canary.
type Store interface {
	SetCache(ctx context.Context, name, value string, ttl time.Duration) error
	GetCache(ctx context.Context, name string) (string, bool, error)
}

// NonceFunc mints the nonce of an action for the anonymous user.
type NonceFunc func(action string) string

// Tester checks whether the service can send background requests to itself.
type Tester struct {
	ajaxURL string
	client  *http.Client
	nonce   NonceFunc
	store   Store
	logger  logger.Logger
}

func NewTester(ajaxURL string, timeout time.Duration, nonce NonceFunc, store Store, log logger.Logger) *Tester {
	if log == nil {
		log = logger.NewNop()
	}
	return &Tester{
		ajaxURL: ajaxURL,
		client:  &http.Client{Timeout: timeout},
		nonce:   nonce,
		store:   store,
		logger:  log,
	}
}

// Dispatch posts the probe request.
func (t *Tester) Dispatch(ctx context.Context) error {
	args := url.Values{}
	args.Set("action", Action)
	args.Set("nonce", t.nonce(Action))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.ajaxURL+"?"+args.Encode(), strings.NewReader(args.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to dispatch probe: %w", err)
	}
	defer utils.Close(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("probe returned %s", resp.Status)
	}
	return nil
}

// Handle runs on the receiving side of the probe.
func (t *Tester) Handle(ctx context.Context) error {
	t.logger.Debug("async process probe received")
	return t.store.SetCache(ctx, Canary, "1", CanaryTTL)
}

// Supported reports whether a probe came through during the last hour.
func (t *Tester) Supported(ctx context.Context) (bool, error) {
	_, ok, err := t.store.GetCache(ctx, Canary)
	return ok, err
}

// Probe dispatches the probe and logs the outcome.
func (t *Tester) Probe(ctx context.Context) bool {
	if err := t.Dispatch(ctx); err != nil {
		t.logger.Warn("async process probe failed", logger.Error(err))
		return false
	}
	ok, err := t.Supported(ctx)
	if err != nil {
		t.logger.Warn("failed to read async process canary", logger.Error(err))
		return false
	}
	t.logger.Info("async process probe done", logger.Bool("supported", ok))
	return ok
}
