package deps

import (
	"time"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/helphub"
	"github.com/MrSnakeDoc/automator/internal/hooks"
	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/nonce"
	"github.com/MrSnakeDoc/automator/internal/notifications"
	"github.com/MrSnakeDoc/automator/internal/process"
	redisstore "github.com/MrSnakeDoc/automator/internal/store/redis"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time       // for testing, defaults to time.Now
	AllowedCIDRS  []string               // IPs allowed to access admin, events and probe endpoints
	TrustProxy    bool                   // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RESTBurst     int                    // rate limit burst on integration REST routes
	RESTRefill    int                    // rate limit refill per minute on integration REST routes
	AjaxURL       string                 // absolute admin ajax URL used in dashboard links
	Store         *redisstore.Store      // Redis store (options, queues, posts, access, caches)
	Connectors    []*automator.Connector // one per integration, endpoints registered
	Bus           *hooks.Bus             // in-process hook bus
	Nonces        *nonce.Manager         // admin action nonces
	Notifications *notifications.Service // in-admin notifications
	HelpHub       *helphub.Factory       // help pages
	Tester        *process.Tester        // async process probe
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}

// Connector returns the connector of an integration id.
func (d Deps) Connector(integrationID string) (*automator.Connector, bool) {
	for _, c := range d.Connectors {
		if c.Integration.ID == integrationID {
			return c, true
		}
	}
	return nil, false
}
