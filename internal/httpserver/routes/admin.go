package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/automator/internal/httpserver/mw"
)

func init() { Register(registerAdmin, mw.NoCache) }

// registerAdmin mounts the dashboard routes. Only admin-ajax accepts
// anonymous callers: the async probe posts there with a nonce minted
// in-process, and every other ajax nonce is bound to a user.
func registerAdmin(r chi.Router, d deps.Deps) {
	if len(d.AllowedCIDRS) == 0 {
		d.Logger.Warn("admin routes are not restricted by IP; AUTOMATOR_ALLOWED_CIDRS is empty and the user header is trusted as sent")
	}
	admin := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.User)
	admin.Post("/wp-admin/admin-ajax.php", handlers.Ajax(d))

	authed := admin.With(mw.RequireUser)
	authed.Get("/wp-admin/nonce", handlers.Nonce(d))
	authed.Get("/wp-admin/settings/integrations", handlers.Settings(d))
	authed.Get("/wp-admin/help-hub/{type}", handlers.HelpHub(d))
	authed.Get("/wp-admin/ian/screen", handlers.IANScreen(d))
}
