package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-backend/internal/cache"
)

func TestGetSetRoundTrip(t *testing.T) {
	b := New(10, nil)
	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "k", []byte("v"), 0))

	v, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(v))
}

func TestGetMissOnExpiry(t *testing.T) {
	b := New(10, nil)
	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "k", []byte("v"), 1*time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLRUEvictionBoundary(t *testing.T) {
	b := New(3, nil)
	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, b.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, b.Set(ctx, "c", []byte("3"), 0))
	require.NoError(t, b.Set(ctx, "d", []byte("4"), 0))

	_, ok, _ := b.Get(ctx, "a")
	assert.False(t, ok, "oldest write must be evicted")
	for _, k := range []string{"b", "c", "d"} {
		_, ok, _ := b.Get(ctx, k)
		assert.True(t, ok, "%s must remain", k)
	}
}

func TestLRUReadPromotesEntry(t *testing.T) {
	b := New(3, nil)
	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, b.Set(ctx, "b", []byte("2"), 0))
	_, _, _ = b.Get(ctx, "a") // promote a between write and 4th write
	require.NoError(t, b.Set(ctx, "c", []byte("3"), 0))
	require.NoError(t, b.Set(ctx, "d", []byte("4"), 0))

	_, ok, _ := b.Get(ctx, "b")
	assert.False(t, ok, "second-written (not promoted) must be evicted")
	_, ok, _ = b.Get(ctx, "a")
	assert.True(t, ok, "promoted entry must survive")
}

func TestDeleteCalendarMetadataCascadesTrackingSet(t *testing.T) {
	b := New(100, nil)
	ctx := context.Background()
	cid := uuid.New()

	require.NoError(t, b.Set(ctx, cache.CalendarKey(cid), []byte("meta"), 0))
	require.NoError(t, b.Set(ctx, cache.CalendarEntriesKey(cid, "2024-06-01", "2024-06-30"), []byte("[]"), 0))
	require.NoError(t, b.Set(ctx, cache.CalendarEntriesKey(cid, "2024-07-01", "2024-07-31"), []byte("[]"), 0))

	require.NoError(t, b.Delete(ctx, cache.CalendarKey(cid)))

	for _, k := range []string{
		cache.CalendarKey(cid),
		cache.CalendarEntriesKey(cid, "2024-06-01", "2024-06-30"),
		cache.CalendarEntriesKey(cid, "2024-07-01", "2024-07-31"),
	} {
		_, ok, _ := b.Get(ctx, k)
		assert.False(t, ok, "%s must be absent after metadata delete", k)
	}
}

func TestDeletePatternRemovesOnlyMatching(t *testing.T) {
	b := New(100, nil)
	ctx := context.Background()
	cid := uuid.New()
	other := uuid.New()

	require.NoError(t, b.Set(ctx, cache.CalendarEntriesKey(cid, "2024-06-01", "2024-06-30"), []byte("[]"), 0))
	require.NoError(t, b.Set(ctx, cache.CalendarEntriesKey(other, "2024-06-01", "2024-06-30"), []byte("[]"), 0))

	require.NoError(t, b.DeletePattern(ctx, cache.CalendarEntriesPattern(cid)))

	_, ok, _ := b.Get(ctx, cache.CalendarEntriesKey(cid, "2024-06-01", "2024-06-30"))
	assert.False(t, ok)
	_, ok, _ = b.Get(ctx, cache.CalendarEntriesKey(other, "2024-06-01", "2024-06-30"))
	assert.True(t, ok, "unrelated calendar's key must survive")
}

func TestDeletePatternStarMatchesEverythingIncludingFallbackScan(t *testing.T) {
	b := New(100, nil)
	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, b.Set(ctx, "", []byte("2"), 0))

	require.NoError(t, b.DeletePattern(ctx, "*"))

	_, ok, _ := b.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMaxEntriesMustBePositive(t *testing.T) {
	assert.Panics(t, func() { New(0, nil) })
}
