package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/automator/internal/httpserver/mw"
	"github.com/MrSnakeDoc/automator/internal/metrics"
)

func init() { Register(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/readyz", handlers.Readyz(d))
	restricted.Method("GET", "/metrics", metrics.Handler())
}
