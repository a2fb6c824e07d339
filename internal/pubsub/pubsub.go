// Package pubsub implements the per-calendar broadcast fan-out: two
// interchangeable implementations behind one contract, a local in-process
// broadcaster and a Redis-backed cross-instance broadcaster. Each uses a
// per-key channel map guarded by a single lock, lazily allocated on first
// subscribe, with slow-subscriber isolation so one laggard cannot block
// publish for everyone else.
//
// The fan-out payload is calendarmodel.StoredEvent rather than a bare
// CalendarEvent: the event ring is the sole authority that assigns an
// event's monotonic id, and it must assign that id exactly once per
// logical event, upstream of fan-out, so every subscriber (and the ring's
// own catch-up replay) agrees on the same id. Carrying the already-assigned
// id through the broadcast channel keeps that invariant without
// re-deriving or duplicating ids per subscriber; see eventstream.Publisher,
// which is the only place Publish is called.
package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"calendar-backend/internal/calendarmodel"
)

// receiverCapacity is the per-subscriber undelivered-event buffer.
const receiverCapacity = 100

// Receiver is a subscription handle returned by Subscribe. Events arrives
// on Events(); if the subscriber falls behind, Lagged() closes and the
// owner is expected to Close and resubscribe, replaying via the event ring.
type Receiver struct {
	events chan calendarmodel.StoredEvent
	lagged chan struct{}
	laggedOnce sync.Once

	unsubscribe func()
	closeOnce   sync.Once
}

func newReceiver(unsubscribe func()) *Receiver {
	return &Receiver{
		events:      make(chan calendarmodel.StoredEvent, receiverCapacity),
		lagged:      make(chan struct{}),
		unsubscribe: unsubscribe,
	}
}

func (r *Receiver) Events() <-chan calendarmodel.StoredEvent { return r.events }
func (r *Receiver) Lagged() <-chan struct{}                  { return r.lagged }

func (r *Receiver) markLagged() {
	r.laggedOnce.Do(func() { close(r.lagged) })
}

// Close releases the receiver's slot. Safe to call more than once.
func (r *Receiver) Close() {
	r.closeOnce.Do(func() {
		if r.unsubscribe != nil {
			r.unsubscribe()
		}
	})
}

// PubSub is the fan-out contract the cached repository decorator
// publishes through and the SSE producer subscribes through.
type PubSub interface {
	Publish(ctx context.Context, calendarID uuid.UUID, event calendarmodel.StoredEvent) error
	Subscribe(ctx context.Context, calendarID uuid.UUID) (*Receiver, error)
}

// Local is the in-process PubSub implementation: one broadcast topic per
// calendar id, lazily created on first Subscribe and reused by Publish.
type Local struct {
	mu      sync.Mutex
	topics  map[uuid.UUID]*topic
}

type topic struct {
	mu        sync.Mutex
	receivers map[*Receiver]struct{}
}

func NewLocal() *Local {
	return &Local{topics: make(map[uuid.UUID]*topic)}
}

var _ PubSub = (*Local)(nil)

func (l *Local) getOrCreateTopic(calendarID uuid.UUID) *topic {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.topics[calendarID]
	if !ok {
		t = &topic{receivers: make(map[*Receiver]struct{})}
		l.topics[calendarID] = t
	}
	return t
}

// Publish is best-effort and never blocks on a slow subscriber: a full
// receiver buffer marks that receiver lagged instead of blocking the send.
// If there are no receivers the call is a silent no-op.
func (l *Local) Publish(ctx context.Context, calendarID uuid.UUID, event calendarmodel.StoredEvent) error {
	l.mu.Lock()
	t, ok := l.topics[calendarID]
	l.mu.Unlock()
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for r := range t.receivers {
		select {
		case r.events <- event:
		default:
			r.markLagged()
		}
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context, calendarID uuid.UUID) (*Receiver, error) {
	t := l.getOrCreateTopic(calendarID)
	t.mu.Lock()
	defer t.mu.Unlock()
	var r *Receiver
	r = newReceiver(func() {
		t.mu.Lock()
		delete(t.receivers, r)
		t.mu.Unlock()
	})
	t.receivers[r] = struct{}{}
	return r, nil
}
