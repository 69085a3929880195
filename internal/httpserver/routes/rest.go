package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/automator/internal/httpserver/mw"
)

func init() { Register(registerREST, mw.NoCache) }

// registerREST mounts every registered endpoint under /wp-json. Routes of
// disabled endpoints stay mounted and answer rest_no_route.
func registerREST(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RESTBurst,
		RefillPerMin: d.RESTRefill,
		MaxEntries:   10000,
		TrustProxy:   d.TrustProxy,
	}))

	for _, c := range d.Connectors {
		for _, e := range c.Registry.List() {
			method := http.MethodGet
			if e.Type() == automator.TypeAction {
				method = http.MethodPost
			}
			limited.Method(method, "/wp-json"+e.Route(), handlers.Endpoint(d, e))
			d.Logger.Debugf("REST route %s /wp-json%s", method, e.Route())
		}
	}
	limited.HandleFunc("/wp-json/*", handlers.RESTNoRoute)
}
