package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/httpserver/mw"
	"github.com/MrSnakeDoc/automator/internal/logger"
)

// Settings renders the integrations settings tab: the dashboard fields of
// every integration, in order. ?format=json returns the field mapping.
func Settings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := mw.UserFrom(ctx)
		nonce := func(action string) string { return d.Nonces.Create(action, user) }

		fields := automator.NewFields()
		for _, c := range d.Connectors {
			var err error
			fields, err = c.Dashboard(nonce, d.AjaxURL).AddFields(ctx, fields)
			if err != nil {
				d.Logger.Error("failed to build dashboard",
					logger.String("integration", c.Integration.ID),
					logger.Error(err))
				http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
				return
			}
		}

		if r.URL.Query().Get("format") == "json" {
			writeJSON(w, http.StatusOK, fields)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(automator.Render(fields)))
	}
}
