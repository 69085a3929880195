package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/httpserver/mw"
	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/metrics"
	"github.com/MrSnakeDoc/automator/internal/notifications"
	"github.com/MrSnakeDoc/automator/internal/process"
	redisstore "github.com/MrSnakeDoc/automator/internal/store/redis"
)

// ajaxAction handles one admin ajax action and reports whether it succeeded.
type ajaxAction func(w http.ResponseWriter, r *http.Request, user string) bool

type connectionView struct {
	ConsumerID string    `json:"consumer_id"`
	AppName    string    `json:"app_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type endpointResult struct {
	Message  string         `json:"message"`
	Endpoint automator.View `json:"endpoint"`
}

// Ajax dispatches admin-ajax.php requests on their action field.
func Ajax(d deps.Deps) http.HandlerFunc {
	actions := ajaxActions(d)

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			ajaxError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		name := r.FormValue("action")
		action, ok := actions[name]
		if !ok {
			metrics.AjaxRequest("unknown", false)
			ajaxError(w, http.StatusBadRequest, "Unknown action")
			return
		}
		metrics.AjaxRequest(name, action(w, r, mw.UserFrom(r.Context())))
	}
}

func ajaxActions(d deps.Deps) map[string]ajaxAction {
	actions := map[string]ajaxAction{
		"ian_optin":    ianOptIn(d),
		"ian_get_feed": ianGetFeed(d),
		"ian_dismiss":  ianDismiss(d),
		process.Action: asyncProbe(d),
	}
	for _, c := range d.Connectors {
		a := c.Actions
		actions[a.EnableEndpoint] = endpointAction(d, c, a.EnableEndpoint, "Endpoint enabled.", (*automator.Manager).Enable)
		actions[a.DisableEndpoint] = endpointAction(d, c, a.DisableEndpoint, "Endpoint disabled.", (*automator.Manager).Disable)
		actions[a.ClearQueue] = endpointAction(d, c, a.ClearQueue, "Endpoint queue cleared.", (*automator.Manager).ClearQueue)
		actions[a.AddConnection] = addConnection(d, c)
		actions[a.CreateAccess] = createAccess(d, c)
		actions[a.DeleteConnection] = deleteConnection(d, c)
	}
	return actions
}

// verifyNonce checks the nonce posted in field against action for user.
func verifyNonce(d deps.Deps, r *http.Request, field, action, user string) bool {
	_, err := d.Nonces.Verify(r.FormValue(field), action, user)
	return err == nil
}

type managerOp func(m *automator.Manager, ctx context.Context, id string) (*automator.Endpoint, error)

func endpointAction(d deps.Deps, c *automator.Connector, action, message string, op managerOp) ajaxAction {
	return func(w http.ResponseWriter, r *http.Request, user string) bool {
		if !verifyNonce(d, r, "_ajax_nonce", action, user) {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		id := strings.TrimSpace(r.FormValue("endpoint_id"))
		if id == "" {
			ajaxError(w, http.StatusBadRequest, "Missing endpoint id")
			return false
		}

		ctx := r.Context()
		e, err := op(c.Manager(), ctx, id)
		switch {
		case errors.Is(err, automator.ErrEndpointNotFound):
			ajaxError(w, http.StatusNotFound, "Endpoint not found")
			return false
		case errors.Is(err, automator.ErrMissingDependency):
			ajaxError(w, http.StatusBadRequest, "Endpoint is missing a required plugin")
			return false
		case errors.Is(err, automator.ErrNotQueueEndpoint):
			ajaxError(w, http.StatusBadRequest, "Endpoint has no queue")
			return false
		case err != nil:
			d.Logger.Error("endpoint action failed",
				logger.String("action", action),
				logger.String("endpoint", id),
				logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "Endpoint could not be updated")
			return false
		}

		view, err := e.View(ctx)
		if err != nil {
			d.Logger.Warn("failed to build endpoint view", logger.String("endpoint", id), logger.Error(err))
		}
		ajaxSuccess(w, endpointResult{Message: message, Endpoint: view})
		return true
	}
}

// addConnection proposes a consumer id for a new connection and lists the
// existing ones. Nothing is stored until an access token is created.
func addConnection(d deps.Deps, c *automator.Connector) ajaxAction {
	action := c.Actions.AddConnection
	return func(w http.ResponseWriter, r *http.Request, user string) bool {
		if !verifyNonce(d, r, "_ajax_nonce", action, user) {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		list, err := d.Store.ListAccess(r.Context(), c.Integration.ID)
		if err != nil {
			d.Logger.Error("failed to list connections", logger.String("integration", c.Integration.ID), logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "Connections could not be loaded")
			return false
		}
		connections := make([]connectionView, 0, len(list))
		for _, a := range list {
			connections = append(connections, connectionView{ConsumerID: a.ConsumerID, AppName: a.AppName, CreatedAt: a.CreatedAt})
		}
		ajaxSuccess(w, map[string]any{
			"consumer_id": uuid.NewString(),
			"connections": connections,
		})
		return true
	}
}

func createAccess(d deps.Deps, c *automator.Connector) ajaxAction {
	action := c.Actions.CreateAccess
	return func(w http.ResponseWriter, r *http.Request, user string) bool {
		if !verifyNonce(d, r, "_ajax_nonce", action, user) {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		appName := strings.TrimSpace(r.FormValue("app_name"))
		if appName == "" {
			ajaxError(w, http.StatusBadRequest, "Missing app name")
			return false
		}

		token, access, err := d.Store.CreateAccess(r.Context(), c.Integration.ID, appName)
		if err != nil {
			d.Logger.Error("failed to create access", logger.String("integration", c.Integration.ID), logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "Access token could not be created")
			return false
		}
		d.Logger.Info("access token created",
			logger.String("integration", c.Integration.ID),
			logger.String("consumer_id", access.ConsumerID),
			logger.String("app_name", appName))
		ajaxSuccess(w, map[string]any{
			"consumer_id":  access.ConsumerID,
			"app_name":     access.AppName,
			"access_token": token,
		})
		return true
	}
}

func deleteConnection(d deps.Deps, c *automator.Connector) ajaxAction {
	action := c.Actions.DeleteConnection
	return func(w http.ResponseWriter, r *http.Request, user string) bool {
		if !verifyNonce(d, r, "_ajax_nonce", action, user) {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		consumerID := strings.TrimSpace(r.FormValue("consumer_id"))
		if consumerID == "" {
			ajaxError(w, http.StatusBadRequest, "Missing consumer id")
			return false
		}

		err := d.Store.DeleteAccess(r.Context(), c.Integration.ID, consumerID)
		switch {
		case errors.Is(err, redisstore.ErrNotFound):
			ajaxError(w, http.StatusNotFound, "Connection not found")
			return false
		case err != nil:
			d.Logger.Error("failed to delete connection", logger.String("integration", c.Integration.ID), logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "Connection could not be deleted")
			return false
		}
		ajaxSuccess(w, "Connection deleted")
		return true
	}
}

func ianOptIn(d deps.Deps) ajaxAction {
	return func(w http.ResponseWriter, r *http.Request, user string) bool {
		if !verifyNonce(d, r, "nonce", notifications.NonceAction, user) {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		if err := d.Notifications.OptIn(r.Context()); err != nil {
			d.Logger.Error("ian opt-in failed", logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "IAN opt-in failed")
			return false
		}
		ajaxSuccess(w, "IAN opt-in successful")
		return true
	}
}

func ianGetFeed(d deps.Deps) ajaxAction {
	return func(w http.ResponseWriter, r *http.Request, user string) bool {
		if !verifyNonce(d, r, "nonce", notifications.NonceAction, user) {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		feed, err := d.Notifications.Feed(r.Context(), user)
		if err != nil {
			d.Logger.Error("failed to load ian feed", logger.Error(err))
			ajaxError(w, http.StatusBadGateway, "Notifications could not be loaded")
			return false
		}
		ajaxSuccess(w, feed)
		return true
	}
}

func ianDismiss(d deps.Deps) ajaxAction {
	return func(w http.ResponseWriter, r *http.Request, user string) bool {
		if !verifyNonce(d, r, "nonce", notifications.NonceAction, user) {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		err := d.Notifications.Dismiss(r.Context(), user, r.FormValue("slug"))
		switch {
		case errors.Is(err, notifications.ErrInvalidSlug):
			ajaxError(w, http.StatusForbidden, "Invalid slug")
			return false
		case err != nil:
			d.Logger.Error("failed to dismiss notification", logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "Notification could not be dismissed")
			return false
		}
		ajaxSuccess(w, true)
		return true
	}
}

// asyncProbe receives the probe the service sends itself; it runs as the
// anonymous user.
func asyncProbe(d deps.Deps) ajaxAction {
	return func(w http.ResponseWriter, r *http.Request, _ string) bool {
		if !verifyNonce(d, r, "nonce", process.Action, "") {
			ajaxError(w, http.StatusForbidden, "Invalid nonce")
			return false
		}
		if err := d.Tester.Handle(r.Context()); err != nil {
			d.Logger.Error("failed to record async probe", logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "Probe could not be recorded")
			return false
		}
		ajaxSuccess(w, nil)
		return true
	}
}
