package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/valuehunter/hunter/internal/pipeline"
	"github.com/valuehunter/hunter/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// EventsHandler streams pipeline progress events over a websocket
type EventsHandler struct {
	broker   *pipeline.Broker
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(broker *pipeline.Broker, log *logger.Logger) *EventsHandler {
	return &EventsHandler{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// Stream upgrades the connection and forwards pipeline events
// GET /api/pipeline/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	events := h.broker.Subscribe()
	defer h.broker.Unsubscribe(events)

	h.logger.WithField("remote", r.RemoteAddr).Debug("Event stream opened")

	// Reader goroutine: drains control frames and detects disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.WithError(err).Debug("Event stream write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			h.logger.WithField("remote", r.RemoteAddr).Debug("Event stream closed")
			return
		}
	}
}
