package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/tasko/internal/domain"
	"github.com/rezkam/tasko/internal/infrastructure/http/response"
)

const streamKeepAlive = 30 * time.Second

// NotificationsResponse lists the notifications still showing.
type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

// ListNotifications handles GET /v1/notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	response.OK(w, NotificationsResponse{Notifications: h.hub.Active(h.engine.Now())})
}

// DismissNotification handles DELETE /v1/notifications/{id}.
func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if !h.hub.Dismiss(chi.URLParam(r, "id")) {
		response.NotFound(w, "notification")
		return
	}
	response.NoContent(w)
}

// StreamNotifications handles GET /v1/notifications/stream as server-sent
// events. Each notification is one "notification" event.
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		slog.DebugContext(r.Context(), "Write deadline not adjustable for stream", "error", err)
	}

	events, cancel := h.hub.Subscribe(0)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.WarnContext(r.Context(), "Streaming not supported", "error", err)
		return
	}

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				slog.ErrorContext(r.Context(), "Failed to encode notification", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", n.ID, data); err != nil {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
