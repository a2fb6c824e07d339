package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-backend/internal/cache"
	memcache "calendar-backend/internal/cache/memory"
	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/eventstream"
	"calendar-backend/internal/pubsub"
	"calendar-backend/internal/storage/memorystore"
)

func newTestRepo() (*CachedRepository, *memcache.Backend, *pubsub.Local) {
	store := memorystore.New()
	c := memcache.New(1000, nil)
	ps := pubsub.NewLocal()
	publisher := eventstream.NewPublisher(eventstream.NewRing(0), ps, nil)
	return New(store, c, publisher, nil), c, ps
}

func mustCalendar(t *testing.T, r *CachedRepository, id uuid.UUID) {
	t.Helper()
	require.NoError(t, r.CreateCalendar(context.Background(), calendarmodel.Calendar{ID: id, Name: "Work"}))
}

// TestRenderThenMutateCacheInvalidation covers the render-then-mutate
// cache invalidation scenario: a read populates the range key, a write
// into that range must invalidate it before the next read repopulates.
func TestRenderThenMutateCacheInvalidation(t *testing.T) {
	r, c, _ := newTestRepo()
	ctx := context.Background()
	cid := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	mustCalendar(t, r, cid)

	rng := calendarmodel.DateRange{Start: "2024-06-01", End: "2024-06-30"}
	entries, err := r.GetEntriesByCalendar(ctx, cid, rng)
	require.NoError(t, err)
	assert.Empty(t, entries)

	key := cache.CalendarEntriesKey(cid, rng.Start, rng.End)
	_, ok, _ := c.Get(ctx, key)
	assert.True(t, ok, "range key must be cached after the first read")

	e1 := calendarmodel.Entry{
		ID: uuid.New(), CalendarID: cid, Title: "x", Kind: calendarmodel.KindAllDay,
		StartDate: "2024-06-15", EndDate: "2024-06-15", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, r.CreateEntry(ctx, e1))

	_, ok, _ = c.Get(ctx, key)
	assert.False(t, ok, "range key must be invalidated after a write into that range")

	entries, err = r.GetEntriesByCalendar(ctx, cid, rng)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e1.ID, entries[0].ID)
}

// TestTrackingSetCascadeOnCalendarDelete is E2.
func TestTrackingSetCascadeOnCalendarDelete(t *testing.T) {
	r, c, _ := newTestRepo()
	ctx := context.Background()
	cid := uuid.New()
	mustCalendar(t, r, cid)

	_, err := r.GetEntriesByCalendar(ctx, cid, calendarmodel.DateRange{Start: "2024-06-01", End: "2024-06-30"})
	require.NoError(t, err)
	_, err = r.GetEntriesByCalendar(ctx, cid, calendarmodel.DateRange{Start: "2024-07-01", End: "2024-07-31"})
	require.NoError(t, err)
	_, err = r.GetCalendar(ctx, cid)
	require.NoError(t, err)

	require.NoError(t, r.DeleteCalendar(ctx, cid))

	for _, key := range []string{
		cache.CalendarKey(cid),
		cache.CalendarEntriesKey(cid, "2024-06-01", "2024-06-30"),
		cache.CalendarEntriesKey(cid, "2024-07-01", "2024-07-31"),
	} {
		_, ok, _ := c.Get(ctx, key)
		assert.False(t, ok, "%s must be absent after calendar delete", key)
	}
}

func TestCreateEntryPublishesEvent(t *testing.T) {
	r, _, ps := newTestRepo()
	ctx := context.Background()
	cid := uuid.New()
	mustCalendar(t, r, cid)

	recv, err := ps.Subscribe(ctx, cid)
	require.NoError(t, err)

	e := calendarmodel.Entry{
		ID: uuid.New(), CalendarID: cid, Title: "standup", Kind: calendarmodel.KindAllDay,
		StartDate: "2024-06-15", EndDate: "2024-06-15", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, r.CreateEntry(ctx, e))

	select {
	case stored := <-recv.Events():
		assert.Equal(t, calendarmodel.EventEntryAdded, stored.Event.Kind)
		require.NotNil(t, stored.Event.Entry)
		assert.Equal(t, e.ID, stored.Event.Entry.ID)
		assert.Equal(t, uint64(1), stored.ID, "first published event on a fresh ring gets id 1")
	case <-time.After(time.Second):
		t.Fatal("expected an EntryAdded event")
	}
}

func TestDeleteEntryWithoutContextPublishesNoEvent(t *testing.T) {
	r, _, ps := newTestRepo()
	ctx := context.Background()
	cid := uuid.New()
	mustCalendar(t, r, cid)

	recv, err := ps.Subscribe(ctx, cid)
	require.NoError(t, err)

	// DeleteEntry on an id never created: storage returns NotFound, so the
	// repository still attempts the single-key delete but must not publish
	// (no calendar id is available), and the call itself fails since there
	// is nothing to delete at the storage layer.
	err = r.DeleteEntry(ctx, uuid.New())
	require.Error(t, err)

	select {
	case <-recv.Events():
		t.Fatal("no event should be published for a delete with no storage context")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateEntryFailurePreventsCacheAndPublishSideEffects(t *testing.T) {
	r, c, ps := newTestRepo()
	ctx := context.Background()
	cid := uuid.New() // never created as a calendar: storage write will fail

	recv, err := ps.Subscribe(ctx, cid)
	require.NoError(t, err)

	e := calendarmodel.Entry{
		ID: uuid.New(), CalendarID: cid, Title: "x", Kind: calendarmodel.KindAllDay,
		StartDate: "2024-06-15", EndDate: "2024-06-15", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.Error(t, r.CreateEntry(ctx, e))

	_, ok, _ := c.Get(ctx, cache.EntryKey(e.ID))
	assert.False(t, ok)

	select {
	case <-recv.Events():
		t.Fatal("no event should be published when the storage write fails")
	case <-time.After(50 * time.Millisecond):
	}
}
