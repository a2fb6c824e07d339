package api

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	calerrors "calendar-backend/internal/errors"
	"calendar-backend/internal/eventstream"
)

// StreamEvents serves GET /calendars/{id}/events: a text/event-stream
// response that replays catch-up from the ring (honoring Last-Event-Id)
// before attaching to the live broadcast.
func (h *Handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	calID, err := parseUUIDParam(r, "id")
	if err != nil {
		h.errorHand.HandleHTTPError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.errorHand.HandleHTTPError(w, r, calerrors.Internal(calerrors.CodeInternalError.String(), "streaming unsupported by response writer").Build())
		return
	}

	var lastEventID *uint64
	if raw := r.Header.Get("Last-Event-Id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			lastEventID = &parsed
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if h.Metrics != nil {
		h.Metrics.SSESubscribers.Inc()
		defer h.Metrics.SSESubscribers.Dec()
	}

	err = h.Streamer.Stream(r.Context(), calID, lastEventID, func(frame eventstream.Frame) error {
		if writeErr := frame.WriteTo(w); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		h.logger.Warn("sse: stream ended with error", zap.String("calendar_id", calID.String()), zap.Error(err))
	}
}
