package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/notifications"
)

type ianScreenResponse struct {
	IsIANPage  bool     `json:"is_ian_page"`
	Icons      []string `json:"icons"`
	Registered bool     `json:"registered"`
}

// IANScreen tells the admin screen ?screen= which notification icons to
// show, registering the plugin slugs on the way when ?page= asks for it.
func IANScreen(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		screen := q.Get("screen")

		registered, err := d.Notifications.RegisterPlugins(r.Context(), q.Get("page"), optionSet(d, r, notifications.OptInOption))
		if err != nil {
			d.Logger.Warn("failed to register ian plugins", logger.Error(err))
		}

		icons := []string{}
		for _, slug := range d.Notifications.PluginSlugs() {
			if d.Notifications.ShowIcon(slug, screen) {
				icons = append(icons, slug)
			}
		}
		ajaxSuccess(w, ianScreenResponse{
			IsIANPage:  d.Notifications.IsIANPage(screen),
			Icons:      icons,
			Registered: registered,
		})
	}
}
