package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kumbara/internal/services"
)

const eventBuffer = 16

// EventsHandler streams ledger and price changes as server-sent events.
type EventsHandler struct {
	tracker   services.TrackerServicer
	keepAlive time.Duration
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(tracker services.TrackerServicer, keepAlive time.Duration) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &EventsHandler{tracker: tracker, keepAlive: keepAlive}
}

// Stream handles GET /events. Each event is named after its type (ledger or
// prices); a ping is sent when nothing happened for a while. The stream ends
// when the client goes away or the core shuts down.
func (h *EventsHandler) Stream(c *gin.Context) {
	events, cancel := h.tracker.Subscribe(eventBuffer)
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(string(ev.Type), ev)
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC()})
		}
		c.Writer.Flush()
	}
}
