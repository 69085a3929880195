package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/httpserver/mw"
)

// Nonce mints a nonce of ?action= for the acting user.
func Nonce(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := strings.TrimSpace(r.URL.Query().Get("action"))
		if action == "" {
			ajaxError(w, http.StatusBadRequest, "Missing action")
			return
		}
		ajaxSuccess(w, map[string]string{
			"action": action,
			"nonce":  d.Nonces.Create(action, mw.UserFrom(r.Context())),
		})
	}
}
