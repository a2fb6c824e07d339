package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyClassification(t *testing.T) {
	id := uuid.New()

	assert.True(t, IsCalendarMetadataKey(CalendarKey(id)))
	assert.False(t, IsCalendarMetadataKey(CalendarEntriesKey(id, "2024-06-01", "2024-06-30")))
	assert.False(t, IsCalendarMetadataKey(EntryKey(id)))

	assert.True(t, IsCalendarEntryKey(CalendarEntriesKey(id, "2024-06-01", "2024-06-30")))
	assert.False(t, IsCalendarEntryKey(CalendarKey(id)))
}

func TestExtractCalendarIDFromKey(t *testing.T) {
	id := uuid.New()

	got, ok := ExtractCalendarIDFromKey(CalendarKey(id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	got, ok = ExtractCalendarIDFromKey(CalendarEntriesKey(id, "2024-06-01", "2024-06-30"))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ExtractCalendarIDFromKey("calendar:*")
	assert.False(t, ok)

	_, ok = ExtractCalendarIDFromKey("entry:not-a-uuid")
	assert.False(t, ok)
}

func TestExtractCalendarIDFromPattern(t *testing.T) {
	id := uuid.New()
	got, ok := ExtractCalendarIDFromPattern(CalendarEntriesPattern(id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ExtractCalendarIDFromPattern("calendar:*:entries:*")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, ClassCalendarMetadata, Classify(CalendarKey(id)))
	assert.Equal(t, ClassCalendarEntryRange, Classify(CalendarEntriesKey(id, "2024-06-01", "2024-06-30")))
	assert.Equal(t, ClassOther, Classify(EntryKey(id)))
}
