package storage

import (
	"context"

	"github.com/google/uuid"

	"calendar-backend/internal/calendarmodel"
)

// EntryStore is the entry half of the storage contract consumed (not
// implemented) by the cached repository decorator. An entry is
// in-range iff start_date <= range.end && end_date >= range.start
// (inclusive overlap), see calendarmodel.Entry.Overlaps.
type EntryStore interface {
	GetEntry(ctx context.Context, id uuid.UUID) (*calendarmodel.Entry, error)
	GetEntriesByCalendar(ctx context.Context, calendarID uuid.UUID, r calendarmodel.DateRange) ([]calendarmodel.Entry, error)
	CreateEntry(ctx context.Context, e calendarmodel.Entry) error
	UpdateEntry(ctx context.Context, e calendarmodel.Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error
}

// CalendarStore is the calendar half of the storage contract.
type CalendarStore interface {
	GetCalendar(ctx context.Context, id uuid.UUID) (*calendarmodel.Calendar, error)
	CreateCalendar(ctx context.Context, c calendarmodel.Calendar) error
	UpdateCalendar(ctx context.Context, c calendarmodel.Calendar) error
	DeleteCalendar(ctx context.Context, id uuid.UUID) error
}

// Store is the full storage contract the cached repository decorator wraps.
type Store interface {
	EntryStore
	CalendarStore
}
