package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/horus/pkg/logger"
)

// StreamHandler pushes widget snapshots as server-sent events.
type StreamHandler struct {
	deps      Dependencies
	logger    logger.Logger
	keepAlive time.Duration
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps Dependencies, l logger.Logger, keepAlive time.Duration) *StreamHandler {
	return &StreamHandler{deps: deps, logger: l, keepAlive: keepAlive}
}

// HandleStream handles GET /widgets/{id}/stream requests. Every snapshot is
// sent as a "snapshot" event; the stream ends when the widget is unmounted
// or the client goes away.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream_widget"
	ctx := r.Context()
	id := r.PathValue("id")

	snaps, cancel, err := h.deps.Subscribe(ctx, id)
	if err != nil {
		writeError(w, classify(op, err))
		return
	}
	defer cancel()

	rc := http.NewResponseController(w)
	// The server write timeout would cut long-lived streams.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn(ctx, "stream flush unsupported", logger.String("widget_id", id), logger.Error(WrapKind(op, ErrStreaming, err)))
		return
	}

	h.logger.Debug(ctx, "stream opened", logger.String("widget_id", id))

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug(ctx, "stream closed by client", logger.String("widget_id", id))
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case snap, ok := <-snaps:
			if !ok {
				_, _ = fmt.Fprint(w, "event: end\ndata: {}\n\n")
				_ = rc.Flush()
				h.logger.Debug(ctx, "stream ended by unmount", logger.String("widget_id", id))
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				h.logger.Error(ctx, "encode snapshot", logger.String("widget_id", id), logger.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Seq, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
