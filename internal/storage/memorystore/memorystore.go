// Package memorystore is an in-memory implementation of the storage
// contract, used as the default backend and throughout the test suite in
// place of a live DynamoDB table.
package memorystore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/storage"
)

type Store struct {
	mu        sync.RWMutex
	calendars map[uuid.UUID]calendarmodel.Calendar
	entries   map[uuid.UUID]calendarmodel.Entry
}

func New() *Store {
	return &Store{
		calendars: make(map[uuid.UUID]calendarmodel.Calendar),
		entries:   make(map[uuid.UUID]calendarmodel.Entry),
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) GetCalendar(ctx context.Context, id uuid.UUID) (*calendarmodel.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.calendars[id]
	if !ok {
		return nil, storage.NewNotFound("calendar", id.String())
	}
	return &c, nil
}

func (s *Store) CreateCalendar(ctx context.Context, c calendarmodel.Calendar) error {
	if err := c.Validate(); err != nil {
		return storage.NewInvalidData("calendar", c.ID.String(), err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.calendars[c.ID]; exists {
		return storage.NewAlreadyExists("calendar", c.ID.String())
	}
	s.calendars[c.ID] = c
	return nil
}

func (s *Store) UpdateCalendar(ctx context.Context, c calendarmodel.Calendar) error {
	if err := c.Validate(); err != nil {
		return storage.NewInvalidData("calendar", c.ID.String(), err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.calendars[c.ID]; !exists {
		return storage.NewNotFound("calendar", c.ID.String())
	}
	s.calendars[c.ID] = c
	return nil
}

func (s *Store) DeleteCalendar(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.calendars[id]; !exists {
		return storage.NewNotFound("calendar", id.String())
	}
	delete(s.calendars, id)
	for eid, e := range s.entries {
		if e.CalendarID == id {
			delete(s.entries, eid)
		}
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*calendarmodel.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, storage.NewNotFound("entry", id.String())
	}
	return &e, nil
}

func (s *Store) GetEntriesByCalendar(ctx context.Context, calendarID uuid.UUID, r calendarmodel.DateRange) ([]calendarmodel.Entry, error) {
	if err := r.Validate(); err != nil {
		return nil, storage.NewInvalidData("entry", "", err.Error())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []calendarmodel.Entry
	for _, e := range s.entries {
		if e.CalendarID == calendarID && e.Overlaps(r) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) CreateEntry(ctx context.Context, e calendarmodel.Entry) error {
	if err := e.Validate(); err != nil {
		return storage.NewInvalidData("entry", e.ID.String(), err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.calendars[e.CalendarID]; !exists {
		return storage.NewNotFound("calendar", e.CalendarID.String())
	}
	if _, exists := s.entries[e.ID]; exists {
		return storage.NewAlreadyExists("entry", e.ID.String())
	}
	s.entries[e.ID] = e
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, e calendarmodel.Entry) error {
	if err := e.Validate(); err != nil {
		return storage.NewInvalidData("entry", e.ID.String(), err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ID]; !exists {
		return storage.NewNotFound("entry", e.ID.String())
	}
	s.entries[e.ID] = e
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[id]; !exists {
		return storage.NewNotFound("entry", id.String())
	}
	delete(s.entries, id)
	return nil
}
