// internal/app/features/events/handler.go
package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/applytrack/internal/app/system/auth"
	"github.com/dalemusser/applytrack/internal/app/system/changefeed"
	"github.com/dalemusser/applytrack/internal/app/system/metrics"
	"go.uber.org/zap"
)

// DefaultHeartbeat keeps idle streams alive through proxies.
const DefaultHeartbeat = 25 * time.Second

// Handler streams change notifications to the browser as Server-Sent Events.
type Handler struct {
	Notifier  changefeed.Notifier
	Heartbeat time.Duration
	Log       *zap.Logger
}

// NewHandler creates a new events handler.
func NewHandler(notifier changefeed.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		Notifier:  notifier,
		Heartbeat: DefaultHeartbeat,
		Log:       logger,
	}
}

// ServeEvents handles GET /events.
// Each notification for the signed-in user becomes an "event: changed"
// message; pages react by re-requesting their statistics. The subscription
// lives exactly as long as the request.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	// One pending change is enough: it already means "reload".
	changes := make(chan changefeed.Event, 1)
	sub, err := h.Notifier.Subscribe(ctx, u.ID, func(ev changefeed.Event) {
		select {
		case changes <- ev:
		default:
		}
	})
	if err != nil {
		h.Log.Warn("event subscribe failed", zap.Error(err), zap.String("user_id", u.ID))
		http.Error(w, "events unavailable", http.StatusServiceUnavailable)
		return
	}
	defer sub.Cancel()

	metrics.EventStreams.Inc()
	defer metrics.EventStreams.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "retry: 5000\n: connected\n\n"); err != nil {
		return
	}
	flusher.Flush()

	beat := h.Heartbeat
	if beat <= 0 {
		beat = DefaultHeartbeat
	}
	ticker := time.NewTicker(beat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-changes:
			data, _ := json.Marshal(struct {
				Kind string    `json:"kind"`
				At   time.Time `json:"at"`
			}{ev.Kind, ev.At})
			if _, err := fmt.Fprintf(w, "event: changed\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
