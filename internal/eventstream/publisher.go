package eventstream

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/pubsub"
)

// EventCounter receives one increment per published event, labeled by
// kind. Satisfied directly by *observability.Collector, whose
// IncEventPublished increments EventsPublishedTotal; kept as a narrow interface here
// so eventstream does not depend on the observability package directly.
type EventCounter interface {
	IncEventPublished(kind string)
}

// Publisher is the single entrypoint the cached repository decorator
// calls on every successful entry write. It mints the event's monotonic id by
// appending to the ring exactly once, then fans the now-numbered event out
// through pub/sub. Minting and fan-out happen as one call from the
// caller's perspective, so no event is ever numbered twice and every
// subscriber, live or catching up through the ring, sees the same id for
// the same logical event.
type Publisher struct {
	ring    *Ring
	ps      pubsub.PubSub
	logger  *zap.Logger
	counter EventCounter
}

func NewPublisher(ring *Ring, ps pubsub.PubSub, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{ring: ring, ps: ps, logger: logger}
}

// WithCounter attaches an EventCounter, returning p for chaining at
// construction time in cmd/server.
func (p *Publisher) WithCounter(counter EventCounter) *Publisher {
	p.counter = counter
	return p
}

func (p *Publisher) Publish(ctx context.Context, calendarID uuid.UUID, event calendarmodel.CalendarEvent) error {
	stored := p.ring.Publish(calendarID, event)
	if p.counter != nil {
		p.counter.IncEventPublished(string(event.Kind))
	}
	if err := p.ps.Publish(ctx, calendarID, stored); err != nil {
		p.logger.Warn("eventstream: fan-out after ring publish failed", zap.String("calendar_id", calendarID.String()), zap.Error(err))
		return err
	}
	return nil
}
