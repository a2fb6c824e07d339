// Package eventstream implements the numbered event ring and its
// server-sent-events producer. The ring is a single process-wide struct
// holding a monotonic counter and a capacity-bounded deque, both guarded
// by one mutex; the
// deque is never exposed directly, only through Publish/EventsSince.
package eventstream

import (
	"sync"

	"github.com/google/uuid"

	"calendar-backend/internal/calendarmodel"
)

// DefaultCapacity is the ring's default retained-event count.
const DefaultCapacity = 1000

// Ring is a process-wide, append-only, capacity-bounded sequence of
// StoredEvents with FIFO eviction and a strictly monotonic id counter.
type Ring struct {
	mu       sync.Mutex
	capacity int
	events   []calendarmodel.StoredEvent
	nextID   uint64
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{capacity: capacity}
}

// Publish appends a new StoredEvent with a freshly assigned, strictly
// increasing id and returns it.
func (r *Ring) Publish(calendarID uuid.UUID, event calendarmodel.CalendarEvent) calendarmodel.StoredEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := calendarmodel.StoredEvent{ID: r.nextID, CalendarID: calendarID, Event: event}
	r.events = append(r.events, stored)
	if len(r.events) > r.capacity {
		r.events = r.events[len(r.events)-r.capacity:]
	}
	return stored
}

// EventsSince returns, in id order, every retained event for calendarID
// with id > since. An id older than the ring's retained window returns
// whatever portion remains, never an error.
func (r *Ring) EventsSince(calendarID uuid.UUID, since uint64) []calendarmodel.StoredEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []calendarmodel.StoredEvent
	for _, e := range r.events {
		if e.CalendarID == calendarID && e.ID > since {
			out = append(out, e)
		}
	}
	return out
}
