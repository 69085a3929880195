package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/automator/internal/hooks"
	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/logger"
)

type postStatusRequest struct {
	PostType    string `json:"post_type"`
	Status      string `json:"status"`
	EventStatus string `json:"event_status"`
}

type postStatusResponse struct {
	PostID         int64  `json:"post_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status"`
}

// PostStatus takes in a post status change from the site, persists it and
// fans it out to the trigger queues. Subscriber failures are logged only,
// the status change itself was accepted.
func PostStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			ajaxError(w, http.StatusBadRequest, "Invalid post id")
			return
		}
		var req postStatusRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			ajaxError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		req.Status = strings.TrimSpace(req.Status)
		if req.Status == "" {
			ajaxError(w, http.StatusBadRequest, "Missing status")
			return
		}

		prev, err := d.Store.SetPostStatus(ctx, id, req.PostType, req.Status)
		if err != nil {
			d.Logger.Error("failed to save post status", logger.Int64("post_id", id), logger.Error(err))
			ajaxError(w, http.StatusInternalServerError, "Post status could not be saved")
			return
		}

		ev := hooks.PostStatusChanged{
			PostID:         id,
			PostType:       req.PostType,
			Status:         req.Status,
			PreviousStatus: prev,
			EventStatus:    req.EventStatus,
		}
		if err := d.Bus.Publish(ctx, hooks.TopicPostStatusChanged, ev); err != nil {
			d.Logger.Warn("post status subscribers failed", logger.Int64("post_id", id), logger.Error(err))
		}

		writeJSON(w, http.StatusAccepted, ajaxResponse{
			Success: true,
			Data:    postStatusResponse{PostID: id, Status: req.Status, PreviousStatus: prev},
		})
	}
}
