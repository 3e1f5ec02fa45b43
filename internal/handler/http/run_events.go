package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
)

// RunEventsTopic carries one event per finished processing run
const RunEventsTopic = "attendance.runs"

type RunEventsHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type runEventsHandlerImpl struct {
	hub       *sse.Hub
	keepalive time.Duration
}

func NewRunEventsHandler(hub *sse.Hub, keepalive time.Duration) RunEventsHandler {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &runEventsHandlerImpl{
		hub:       hub,
		keepalive: keepalive,
	}
}

// RunPublisher returns the run observer that feeds Stream subscribers.
func RunPublisher(hub *sse.Hub) func(kind string, summary attendance.RunSummary) {
	return func(kind string, summary attendance.RunSummary) {
		hub.Publish(sse.Event{
			Topic: RunEventsTopic,
			Name:  kind,
			Data:  summary,
		})
	}
}

// Stream implements RunEventsHandler.
func (h *runEventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(RunEventsTopic)
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
