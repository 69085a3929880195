package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/automator/internal/httpserver/mw"
)

func init() { Register(registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Post("/events/posts/{id}", handlers.PostStatus(d))
}
