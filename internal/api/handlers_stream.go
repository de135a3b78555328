// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/echotrace/echotrace/internal/fanout"
	"github.com/echotrace/echotrace/internal/logging"
)

// sseKeepaliveInterval is how often an SSE comment line is written to
// keep intermediaries from reaping idle connections.
const sseKeepaliveInterval = 15 * time.Second

// Events handles GET /api/events, streaming accepted webhook events as
// server-sent events until the client disconnects.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, "STREAMING_UNSUPPORTED",
			"response writer does not support streaming", nil)
		return
	}

	// The stream must outlive the server-wide WriteTimeout; the
	// keepalive ticker takes over liveness from here.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("failed to clear write deadline for event stream")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := fanout.NewSubscriber()
	h.hub.Register <- sub
	defer h.unregister(sub)

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case msg, ok := <-sub.Messages():
			if !ok {
				// Hub dropped or closed this subscriber
				return
			}
			data, err := json.Marshal(msg.Data)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal SSE payload")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// unregister hands the subscriber back to the hub without wedging the
// handler goroutine if the hub is already shutting down.
func (h *Handlers) unregister(sub *fanout.Subscriber) {
	select {
	case h.hub.Unregister <- sub:
	case <-time.After(5 * time.Second):
	}
}

// WebSocket handles GET /api/ws, upgrading to the hub's WebSocket
// transport.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := fanout.NewClient(h.hub, conn)
	h.hub.Register <- client.Subscriber()
	client.Start()
}

// checkWebSocketOrigin validates connection origins against the CORS
// allow list. Browser WebSockets always send Origin; non-browser
// clients (the CLI, scripts) omit it and are allowed through.
func (h *Handlers) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}
