package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/automator/internal/helphub"
	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/notifications"
)

// LicenseOption is set to "1" once a premium license was validated.
const LicenseOption = "tec_license_valid"

// HelpHub renders the help page of the {type} path parameter.
func HelpHub(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hub, err := d.HelpHub.Create(chi.URLParam(r, "type"))
		if errors.Is(err, helphub.ErrUnknownHubType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			d.Logger.Error("failed to create help hub", logger.Error(err))
			http.Error(w, "help hub unavailable", http.StatusInternalServerError)
			return
		}

		hub.Status = helphub.Status{
			OptedIn:      optionSet(d, r, notifications.OptInOption),
			LicenseValid: optionSet(d, r, LicenseOption),
		}

		var buf bytes.Buffer
		if err := hub.Render(&buf); err != nil {
			d.Logger.Error("failed to render help hub", logger.String("type", hub.Type), logger.Error(err))
			http.Error(w, "help hub unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

// optionSet reports whether option key holds "1". Read errors count as unset.
func optionSet(d deps.Deps, r *http.Request, key string) bool {
	v, ok, err := d.Store.GetOption(r.Context(), key)
	if err != nil {
		d.Logger.Warn("failed to read option", logger.String("option", key), logger.Error(err))
		return false
	}
	return ok && v == "1"
}
