package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shop-backend/internal/middleware"
	"shop-backend/internal/model"
	"shop-backend/internal/service"
	"shop-backend/pkg/apierror"
)

const streamHeartbeat = 25 * time.Second

type CommentHandler struct {
	service *service.CommentService
}

func NewCommentHandler(service *service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	list, meta, err := h.service.List(r.Context(), viewerID(r),
		parseIntOrDefault(query.Get("page"), 1),
		parseIntOrDefault(query.Get("limit"), 20))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, &meta)
}

func (h *CommentHandler) Replies(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Replies(r.Context(), viewerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, list, nil)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateCommentRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.service.Create(r.Context(), viewerID(r), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, comment, nil)
}

func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.ToggleLike(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, comment, nil)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.service.Delete(r.Context(), claims, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

// Stream pushes comment activity as server-sent events until the client goes
// away.
func (h *CommentHandler) Stream(w http.ResponseWriter, r *http.Request) {
	feed, unsubscribe, ok := h.service.Subscribe()
	if !ok {
		writeError(w, apierror.New("STREAM_UNAVAILABLE", "comment stream is not configured", "", http.StatusServiceUnavailable))
		return
	}
	defer unsubscribe()

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.Warn("comment stream cannot flush", "error", err)
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case e, open := <-feed:
			if !open {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func viewerID(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.UserID
	}
	return ""
}
