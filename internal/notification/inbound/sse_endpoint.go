package inbound

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fanoutlabs/herald/internal/pkg/jwt"
)

const ssePingInterval = 25 * time.Second

// StreamDeliveryEvents streams per-attempt delivery events to the client using SSE.
// @Summary Stream delivery events
// @Description Streams delivery outcome events using Server-Sent Events (SSE).
// @Tags Notification
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/notifications/stream [get]
func (h *HTTPEndpoint) StreamDeliveryEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if jwt.GetAuth(ctx) == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	flusher, ok := beginSSE(w)
	if !ok {
		return
	}

	stream := h.uc.SubscribeDeliveryEvents(ctx)

	// heartbeat ping, so proxies won't drop idle connections.
	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case evt, ok := <-stream:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal delivery event", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: delivery\ndata: %s\n\n", payload); err != nil {
				slog.ErrorContext(ctx, "failed to send delivery event", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// StreamRealtime streams rendered realtime notifications to the client using SSE.
// @Summary Stream realtime notifications
// @Description Streams realtime channel notifications using Server-Sent Events (SSE).
// @Tags Notification
// @Security BearerAuth
// @Produce text/event-stream
// @Param recipient query string false "Only stream messages addressed to this recipient"
// @Success 200 {string} string "SSE stream"
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/notifications/realtime [get]
func (h *HTTPEndpoint) StreamRealtime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if jwt.GetAuth(ctx) == nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	flusher, ok := beginSSE(w)
	if !ok {
		return
	}

	recipient := r.URL.Query().Get("recipient")
	stream := h.uc.SubscribeRealtime(ctx)

	ticker := time.NewTicker(ssePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case msg, ok := <-stream:
			if !ok {
				return
			}
			if recipient != "" && msg.Recipient != recipient {
				continue
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal realtime message", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload); err != nil {
				slog.ErrorContext(ctx, "failed to send realtime message", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func beginSSE(w http.ResponseWriter) (http.Flusher, bool) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return nil, false
	}
	flusher.Flush()

	return flusher, true
}
