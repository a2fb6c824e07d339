// Package cache defines the cache capability interface, the bit-stable key
// grammar, and the glob matcher shared by every backend. It never embeds a
// backend-specific error shape: backends translate their own failures into
// ErrUnavailable/ErrSerialization at the boundary (see errors.go).
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cache is the capability interface every backend implements and the
// only interface the cached repository decorator depends on.
type Cache interface {
	// Get returns (value, true, nil) on hit, (nil, false, nil) on miss or
	// expiry, (nil, false, err) on backend failure.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set overwrites key unconditionally. ttl == 0 means "never expires".
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete is idempotent; deleting an absent key is not an error. Its
	// behavior is driven by the key's class (see Classify).
	Delete(ctx context.Context, key string) error
	// DeletePattern removes every tracked key matching glob. Backend-specific
	// for patterns without an extractable calendar id (see memory/remote).
	DeletePattern(ctx context.Context, glob string) error
}

// Key constructors. These render the fixed key grammar verbatim; any
// rewrite must reproduce them exactly.

func EntryKey(id uuid.UUID) string {
	return fmt.Sprintf("entry:%s", id)
}

func CalendarKey(id uuid.UUID) string {
	return fmt.Sprintf("calendar:%s", id)
}

func CalendarEntriesKey(id uuid.UUID, startDate, endDate string) string {
	return fmt.Sprintf("calendar:%s:entries:%s:%s", id, startDate, endDate)
}

func CalendarEntriesPattern(id uuid.UUID) string {
	return fmt.Sprintf("calendar:%s:entries:*", id)
}

func TrackingSetKey(id uuid.UUID) string {
	return fmt.Sprintf("calendar:%s:_keys", id)
}

func ChannelKey(id uuid.UUID) string {
	return fmt.Sprintf("channel:calendar:%s", id)
}

// KeyClass is the result of classifying a key for deletion purposes.
type KeyClass int

const (
	ClassOther KeyClass = iota
	ClassCalendarMetadata
	ClassCalendarEntryRange
)

// IsCalendarMetadataKey matches "calendar:<uuid>" with no further segments.
func IsCalendarMetadataKey(k string) bool {
	const prefix = "calendar:"
	if !strings.HasPrefix(k, prefix) {
		return false
	}
	rest := k[len(prefix):]
	if strings.Contains(rest, ":") {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// IsCalendarEntryKey matches "calendar:<uuid>:entries:...".
func IsCalendarEntryKey(k string) bool {
	const prefix = "calendar:"
	if !strings.HasPrefix(k, prefix) {
		return false
	}
	rest := k[len(prefix):]
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 || !strings.HasPrefix(parts[1], "entries") {
		return false
	}
	_, err := uuid.Parse(parts[0])
	return err == nil
}

// Classify returns the deletion class of a concrete (non-glob) key.
func Classify(k string) KeyClass {
	if IsCalendarMetadataKey(k) {
		return ClassCalendarMetadata
	}
	if IsCalendarEntryKey(k) {
		return ClassCalendarEntryRange
	}
	return ClassOther
}

// ExtractCalendarIDFromKey parses the uuid segment after "calendar:" in a
// concrete key. Returns (uuid.Nil, false) if the segment contains '*' or is
// not a valid uuid.
func ExtractCalendarIDFromKey(k string) (uuid.UUID, bool) {
	const prefix = "calendar:"
	if !strings.HasPrefix(k, prefix) {
		return uuid.Nil, false
	}
	rest := k[len(prefix):]
	idSeg := rest
	if idx := strings.Index(rest, ":"); idx >= 0 {
		idSeg = rest[:idx]
	}
	if strings.Contains(idSeg, "*") {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idSeg)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ExtractCalendarIDFromPattern is the pattern-side analogue of
// ExtractCalendarIDFromKey: same rule, applied to a glob.
func ExtractCalendarIDFromPattern(p string) (uuid.UUID, bool) {
	return ExtractCalendarIDFromKey(p)
}
