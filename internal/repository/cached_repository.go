// Package repository implements the cached repository decorator:
// cache-aside reads and write-path invalidation sitting between the HTTP
// handlers and a storage.Store, publishing CalendarEvents on every
// successful entry write (calendar writes publish no event). Read-through population on miss and a fixed
// calendar:{id}:entries:* range-pattern delete on every entry write keep
// the cache consistent with storage.
package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"calendar-backend/internal/cache"
	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/storage"
)

// EventPublisher is the single entrypoint for turning a write's resulting
// CalendarEvent into a numbered, fanned-out event. Implemented by
// eventstream.Publisher, which owns the event ring and the pub/sub layer
// together so an event is never numbered more than once.
type EventPublisher interface {
	Publish(ctx context.Context, calendarID uuid.UUID, event calendarmodel.CalendarEvent) error
}

// DefaultTTL is applied to every cache.Set issued by the decorator. A
// single default is sufficient since every write path explicitly
// invalidates on mutation rather than relying on expiry.
const DefaultTTL = 0 // entries populated by reads never expire; they are invalidated explicitly

// CachedRepository wraps a storage.Store with a cache.Cache and an
// EventPublisher. It holds shared references to all three and never
// mutates an Entry/Calendar itself beyond in-transit (de)serialization.
type CachedRepository struct {
	store     storage.Store
	cache     cache.Cache
	publisher EventPublisher
	logger    *zap.Logger
}

func New(store storage.Store, c cache.Cache, publisher EventPublisher, logger *zap.Logger) *CachedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRepository{store: store, cache: c, publisher: publisher, logger: logger}
}

// GetEntry consults entry:{id} before falling through to storage. A cache
// hit that fails to deserialize is treated as a miss, never as an error:
// the warning is logged and the read proceeds to storage.
func (r *CachedRepository) GetEntry(ctx context.Context, id uuid.UUID) (*calendarmodel.Entry, error) {
	key := cache.EntryKey(id)
	if raw, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var e calendarmodel.Entry
		jsonErr := json.Unmarshal(raw, &e)
		if jsonErr == nil {
			return &e, nil
		}
		r.logger.Warn("cache: entry deserialization failed, treating as miss", zap.String("key", key), zap.Error(jsonErr))
	} else if err != nil {
		r.logger.Warn("cache: get failed, falling through to storage", zap.String("key", key), zap.Error(err))
	}

	e, err := r.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e != nil {
		if raw, jsonErr := json.Marshal(e); jsonErr == nil {
			if err := r.cache.Set(ctx, key, raw, DefaultTTL); err != nil {
				r.logger.Warn("cache: populate after miss failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return e, nil
}

// GetEntriesByCalendar consults calendar:{cid}:entries:{start}:{end}. Two
// overlapping but distinct ranges are independent cache entries, since the
// key embeds the exact requested range verbatim.
func (r *CachedRepository) GetEntriesByCalendar(ctx context.Context, calendarID uuid.UUID, rng calendarmodel.DateRange) ([]calendarmodel.Entry, error) {
	key := cache.CalendarEntriesKey(calendarID, rng.Start, rng.End)
	if raw, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var entries []calendarmodel.Entry
		jsonErr := json.Unmarshal(raw, &entries)
		if jsonErr == nil {
			return entries, nil
		}
		r.logger.Warn("cache: range deserialization failed, treating as miss", zap.String("key", key), zap.Error(jsonErr))
	} else if err != nil {
		r.logger.Warn("cache: get failed, falling through to storage", zap.String("key", key), zap.Error(err))
	}

	entries, err := r.store.GetEntriesByCalendar(ctx, calendarID, rng)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []calendarmodel.Entry{}
	}
	if raw, jsonErr := json.Marshal(entries); jsonErr == nil {
		if err := r.cache.Set(ctx, key, raw, DefaultTTL); err != nil {
			r.logger.Warn("cache: populate after miss failed", zap.String("key", key), zap.Error(err))
		}
	}
	return entries, nil
}

// CreateEntry follows the fixed write-path order: persist, then
// invalidate the range pattern, then publish. If persist fails, no cache
// mutation and no publish occur. Failures in the invalidate/publish steps
// are logged and swallowed: storage has already advanced and subsequent
// reads will naturally re-populate.
func (r *CachedRepository) CreateEntry(ctx context.Context, e calendarmodel.Entry) error {
	if err := r.store.CreateEntry(ctx, e); err != nil {
		return err
	}
	r.invalidateRange(ctx, e.CalendarID)
	r.publish(ctx, e.CalendarID, calendarmodel.CalendarEvent{Kind: calendarmodel.EventEntryAdded, Entry: &e, Date: e.StartDate})
	return nil
}

// UpdateEntry additionally invalidates the single entry key.
func (r *CachedRepository) UpdateEntry(ctx context.Context, e calendarmodel.Entry) error {
	if err := r.store.UpdateEntry(ctx, e); err != nil {
		return err
	}
	r.deleteSingle(ctx, cache.EntryKey(e.ID))
	r.invalidateRange(ctx, e.CalendarID)
	r.publish(ctx, e.CalendarID, calendarmodel.CalendarEvent{Kind: calendarmodel.EventEntryUpdated, Entry: &e, Date: e.StartDate})
	return nil
}

// DeleteEntry mirrors UpdateEntry's invalidation but publishes no event if
// the entry was not found in storage (no calendar id is available). When
// storage reports NotFound, the single entry key is still deleted and the
// NotFound error is returned.
func (r *CachedRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	existing, lookupErr := r.store.GetEntry(ctx, id)
	if err := r.store.DeleteEntry(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			r.deleteSingle(ctx, cache.EntryKey(id))
		}
		return err
	}
	r.deleteSingle(ctx, cache.EntryKey(id))
	if lookupErr != nil || existing == nil {
		return nil
	}
	r.invalidateRange(ctx, existing.CalendarID)
	r.publish(ctx, existing.CalendarID, calendarmodel.CalendarEvent{Kind: calendarmodel.EventEntryDeleted, EntryID: id, Date: existing.StartDate})
	return nil
}

// GetCalendar consults calendar:{id}.
func (r *CachedRepository) GetCalendar(ctx context.Context, id uuid.UUID) (*calendarmodel.Calendar, error) {
	key := cache.CalendarKey(id)
	if raw, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var c calendarmodel.Calendar
		if jsonErr := json.Unmarshal(raw, &c); jsonErr == nil {
			return &c, nil
		}
	}

	c, err := r.store.GetCalendar(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, jsonErr := json.Marshal(c); jsonErr == nil {
		if err := r.cache.Set(ctx, key, raw, DefaultTTL); err != nil {
			r.logger.Warn("cache: calendar populate failed", zap.String("key", key), zap.Error(err))
		}
	}
	return c, nil
}

// CreateCalendar populates calendar:{id} directly rather than waiting for
// the next read.
func (r *CachedRepository) CreateCalendar(ctx context.Context, c calendarmodel.Calendar) error {
	if err := r.store.CreateCalendar(ctx, c); err != nil {
		return err
	}
	if raw, jsonErr := json.Marshal(c); jsonErr == nil {
		if err := r.cache.Set(ctx, cache.CalendarKey(c.ID), raw, DefaultTTL); err != nil {
			r.logger.Warn("cache: calendar populate after create failed", zap.Error(err))
		}
	}
	return nil
}

// UpdateCalendar invalidates calendar:{id}.
func (r *CachedRepository) UpdateCalendar(ctx context.Context, c calendarmodel.Calendar) error {
	if err := r.store.UpdateCalendar(ctx, c); err != nil {
		return err
	}
	r.deleteSingle(ctx, cache.CalendarKey(c.ID))
	return nil
}

// DeleteCalendar invalidates calendar:{id}, which cascades to the entire
// tracking set, and additionally issues the range-pattern delete to cover
// any backend that did not perform the cascade.
func (r *CachedRepository) DeleteCalendar(ctx context.Context, id uuid.UUID) error {
	if err := r.store.DeleteCalendar(ctx, id); err != nil {
		return err
	}
	r.deleteSingle(ctx, cache.CalendarKey(id))
	r.invalidateRange(ctx, id)
	return nil
}

func (r *CachedRepository) invalidateRange(ctx context.Context, calendarID uuid.UUID) {
	if err := r.cache.DeletePattern(ctx, cache.CalendarEntriesPattern(calendarID)); err != nil {
		r.logger.Warn("cache: range pattern delete failed", zap.String("calendar_id", calendarID.String()), zap.Error(err))
	}
}

func (r *CachedRepository) deleteSingle(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("cache: single key delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedRepository) publish(ctx context.Context, calendarID uuid.UUID, event calendarmodel.CalendarEvent) {
	if err := r.publisher.Publish(ctx, calendarID, event); err != nil {
		r.logger.Warn("event publish failed", zap.String("calendar_id", calendarID.String()), zap.Error(err))
	}
}

var _ storage.Store = (*CachedRepository)(nil)
