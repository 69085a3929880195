package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/hooks"
	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/metrics"
	redisstore "github.com/MrSnakeDoc/automator/internal/store/redis"
)

// AppHeader lets an automation service name itself in the dashboard.
const AppHeader = "X-Automator-App"

const (
	defaultSearchLimit = 10
	maxLimit           = 100
)

type actionRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Endpoint serves one integration endpoint. Disabled endpoints behave as
// unknown routes; every other call must carry a valid access token.
func Endpoint(d deps.Deps, e *automator.Endpoint) http.HandlerFunc {
	integration := e.Integration()
	log := d.Logger.With(
		logger.String("integration", integration.ID),
		logger.String("endpoint", e.ID()))

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !e.Enabled(ctx) {
			metrics.EndpointRequest(integration.ID, e.ID(), http.StatusNotFound)
			RESTNoRoute(w, r)
			return
		}

		appName, err := d.Store.VerifyAccess(ctx, integration.ID, accessToken(r))
		if err != nil {
			if !errors.Is(err, redisstore.ErrInvalidToken) {
				log.Error("failed to verify access token", logger.Error(err))
			}
			metrics.EndpointRequest(integration.ID, e.ID(), http.StatusForbidden)
			writeRESTError(w, http.StatusForbidden, "rest_forbidden", "Missing or invalid access token.")
			return
		}
		if app := strings.TrimSpace(r.Header.Get(AppHeader)); app != "" {
			appName = app
		}
		if appName == "" {
			appName = integration.Name
		}
		e.SetLastAccess(ctx, appName)

		var status int
		switch e.Type() {
		case automator.TypeQueue:
			status = drainQueue(w, r, e, log)
		case automator.TypeSearch:
			status = searchPosts(w, r, d, e, log)
		case automator.TypeAction:
			status = createPost(w, r, d, e, log)
		}
		metrics.EndpointRequest(integration.ID, e.ID(), status)
	}
}

func drainQueue(w http.ResponseWriter, r *http.Request, e *automator.Endpoint, log logger.Logger) int {
	limit := queryLimit(r, 0)
	entries, err := e.Queue().Drain(r.Context(), limit)
	if err != nil {
		log.Error("failed to drain queue", logger.Error(err))
		writeRESTError(w, http.StatusInternalServerError, "rest_queue_error", "The queue could not be read.")
		return http.StatusInternalServerError
	}
	if entries == nil {
		entries = []automator.Entry{}
	}
	metrics.QueueDrained(e.Integration().ID, e.ID(), len(entries))
	writeJSON(w, http.StatusOK, entries)
	return http.StatusOK
}

func searchPosts(w http.ResponseWriter, r *http.Request, d deps.Deps, e *automator.Endpoint, log logger.Logger) int {
	def := e.Definition()
	posts, err := d.Store.FindPosts(r.Context(), def.PostType, r.URL.Query().Get("search"), queryLimit(r, defaultSearchLimit))
	if err != nil {
		log.Error("failed to search posts", logger.Error(err))
		writeRESTError(w, http.StatusInternalServerError, "rest_search_error", "The search could not be completed.")
		return http.StatusInternalServerError
	}
	if posts == nil {
		posts = []automator.Post{}
	}

	key := def.ResultKey
	if key == "" {
		key = "results"
	}
	writeJSON(w, http.StatusOK, map[string]any{key: posts})
	return http.StatusOK
}

func createPost(w http.ResponseWriter, r *http.Request, d deps.Deps, e *automator.Endpoint, log logger.Logger) int {
	ctx := r.Context()

	var req actionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeRESTError(w, http.StatusBadRequest, "rest_invalid_json", "The request body is not valid JSON.")
		return http.StatusBadRequest
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeRESTError(w, http.StatusBadRequest, "rest_invalid_param", "Missing parameter: title.")
		return http.StatusBadRequest
	}
	if req.Status == "" {
		req.Status = "draft"
	}

	id, err := d.Store.NextPostID(ctx)
	if err != nil {
		log.Error("failed to allocate post id", logger.Error(err))
		writeRESTError(w, http.StatusInternalServerError, "rest_create_error", "The post could not be created.")
		return http.StatusInternalServerError
	}
	post := &automator.Post{
		ID:        id,
		Type:      e.Definition().PostType,
		Title:     req.Title,
		Status:    req.Status,
		UpdatedAt: d.Now().UTC(),
	}
	if err := d.Store.SavePost(ctx, post); err != nil {
		log.Error("failed to save post", logger.Error(err))
		writeRESTError(w, http.StatusInternalServerError, "rest_create_error", "The post could not be created.")
		return http.StatusInternalServerError
	}

	if d.Bus != nil {
		ev := hooks.PostStatusChanged{
			PostID:   post.ID,
			PostType: post.Type,
			Status:   post.Status,
		}
		if err := d.Bus.Publish(ctx, hooks.TopicPostStatusChanged, ev); err != nil {
			log.Warn("post status subscribers failed", logger.Int64("post_id", post.ID), logger.Error(err))
		}
	}

	if key := e.Definition().ResultKey; key != "" {
		writeJSON(w, http.StatusCreated, map[string]any{key: post})
	} else {
		writeJSON(w, http.StatusCreated, post)
	}
	return http.StatusCreated
}

// accessToken reads the token from the query or a bearer Authorization header.
func accessToken(r *http.Request) string {
	if t := r.URL.Query().Get("access_token"); t != "" {
		return t
	}
	if t, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	return ""
}

func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxLimit)
}
