package eventstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/pubsub"
)

// Frame is one server-sent-events frame: "event: <kind>\nid: <id>\ndata: <json>\n\n".
// Heartbeat frames are comment lines and carry an empty Kind.
type Frame struct {
	Kind string
	ID   uint64
	Data []byte
}

// WriteTo renders the frame in the fixed wire format. A Kind of "" is
// written as a ':keepalive' comment line.
func (f Frame) WriteTo(w io.Writer) error {
	if f.Kind == "" {
		_, err := fmt.Fprintf(w, ":keepalive\n\n")
		return err
	}
	_, err := fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", f.Kind, f.ID, f.Data)
	return err
}

// Producer streams one calendar's events to a single subscriber,
// replaying catch-up from the ring before attaching a live broadcast
// receiver.
type Producer struct {
	ring   *Ring
	ps     pubsub.PubSub
	logger *zap.Logger
}

func NewProducer(ring *Ring, ps pubsub.PubSub, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{ring: ring, ps: ps, logger: logger}
}

// Stream runs until ctx is cancelled (process shutdown or client
// disconnect), or until the broadcast receiver signals it lagged, at
// which point the stream is closed so the client reconnects with
// Last-Event-Id and catches up from the ring instead of silently missing
// events. Each emitted frame is handed to emit.
func (p *Producer) Stream(ctx context.Context, calendarID uuid.UUID, lastEventID *uint64, emit func(Frame) error) error {
	if lastEventID != nil {
		for _, stored := range p.ring.EventsSince(calendarID, *lastEventID) {
			if err := emitStored(emit, stored); err != nil {
				return err
			}
		}
	}

	recv, err := p.ps.Subscribe(ctx, calendarID)
	if err != nil {
		return err
	}
	defer recv.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-recv.Lagged():
			p.logger.Warn("sse producer: subscriber lagged, closing stream", zap.String("calendar_id", calendarID.String()))
			return nil
		case stored, ok := <-recv.Events():
			if !ok {
				return nil
			}
			if err := emitStored(emit, stored); err != nil {
				return err
			}
		}
	}
}

func emitStored(emit func(Frame) error, stored calendarmodel.StoredEvent) error {
	data, err := json.Marshal(stored.Event)
	if err != nil {
		return err
	}
	return emit(Frame{Kind: string(stored.Event.Kind), ID: stored.ID, Data: data})
}
