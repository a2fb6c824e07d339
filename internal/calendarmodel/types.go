// Package calendarmodel defines the core domain types shared by storage,
// caching, and event distribution: Calendar, Entry, DateRange, and the
// CalendarEvent union published on writes.
package calendarmodel

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// EntryKind discriminates the four shapes an Entry can take.
type EntryKind string

const (
	KindAllDay   EntryKind = "AllDay"
	KindTimed    EntryKind = "Timed"
	KindTask     EntryKind = "Task"
	KindMultiDay EntryKind = "MultiDay"
)

const dateLayout = "2006-01-02"

// Calendar is the top-level tenant of entries, addressed by UUID.
type Calendar struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Entry is a single calendar item. Start/End are stored as calendar dates
// (no time zone); StartTime/EndTime are optional clock times used only by
// Kind == Timed.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	CalendarID  uuid.UUID  `json:"calendar_id"`
	Title       string     `json:"title"`
	Kind        EntryKind  `json:"kind"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	StartTime   string     `json:"start_time,omitempty"`
	EndTime     string     `json:"end_time,omitempty"`
	Completed   bool       `json:"completed,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Color       string     `json:"color,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DateRange is the sole selector used for entry range queries. Both bounds
// are inclusive, YYYY-MM-DD calendar dates.
type DateRange struct {
	Start string
	End   string
}

// Key renders the range the way it appears embedded in a cache key.
func (r DateRange) Key() string {
	return r.Start + ":" + r.End
}

// Validate checks Start <= End lexically, which is correct for YYYY-MM-DD.
func (r DateRange) Validate() error {
	if _, err := time.Parse(dateLayout, r.Start); err != nil {
		return fmt.Errorf("invalid range start %q: %w", r.Start, err)
	}
	if _, err := time.Parse(dateLayout, r.End); err != nil {
		return fmt.Errorf("invalid range end %q: %w", r.End, err)
	}
	if r.Start > r.End {
		return fmt.Errorf("range start %q after end %q", r.Start, r.End)
	}
	return nil
}

// Overlaps reports whether the entry's [StartDate, EndDate] interval
// intersects r, inclusive on both ends.
func (e Entry) Overlaps(r DateRange) bool {
	return e.StartDate <= r.End && e.EndDate >= r.Start
}

var (
	hexColor   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	cssColors  = map[string]bool{
		"black": true, "white": true, "red": true, "green": true, "blue": true,
		"yellow": true, "orange": true, "purple": true, "pink": true, "gray": true,
		"grey": true, "brown": true, "cyan": true, "magenta": true, "teal": true,
		"navy": true, "maroon": true, "olive": true, "lime": true, "silver": true,
		"gold": true, "indigo": true, "violet": true, "coral": true, "salmon": true,
		"transparent": true, "currentcolor": true,
	}
)

// ValidColor reports whether c is a hex color or a recognized CSS color name.
// The empty string is valid (color is optional).
func ValidColor(c string) bool {
	if c == "" {
		return true
	}
	if hexColor.MatchString(c) {
		return true
	}
	return cssColors[strings.ToLower(c)]
}

// Validate enforces the Entry invariants: kind-specific
// date relationships, title length, and color format.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("entry %s: title must not be empty", e.ID)
	}
	if utf8.RuneCountInString(e.Title) > 200 {
		return fmt.Errorf("entry %s: title exceeds 200 characters", e.ID)
	}
	if _, err := time.Parse(dateLayout, e.StartDate); err != nil {
		return fmt.Errorf("entry %s: invalid start_date %q", e.ID, e.StartDate)
	}
	if _, err := time.Parse(dateLayout, e.EndDate); err != nil {
		return fmt.Errorf("entry %s: invalid end_date %q", e.ID, e.EndDate)
	}
	switch e.Kind {
	case KindAllDay, KindTimed, KindTask:
		if e.StartDate != e.EndDate {
			return fmt.Errorf("entry %s: kind %s requires start_date == end_date", e.ID, e.Kind)
		}
	case KindMultiDay:
		if e.StartDate > e.EndDate {
			return fmt.Errorf("entry %s: kind MultiDay requires start_date <= end_date", e.ID)
		}
	default:
		return fmt.Errorf("entry %s: unknown kind %q", e.ID, e.Kind)
	}
	if e.Kind == KindTimed {
		if e.StartTime == "" || e.EndTime == "" {
			return fmt.Errorf("entry %s: kind Timed requires start_time and end_time", e.ID)
		}
		if e.StartTime >= e.EndTime {
			return fmt.Errorf("entry %s: kind Timed requires start_time < end_time", e.ID)
		}
	}
	if !ValidColor(e.Color) {
		return fmt.Errorf("entry %s: invalid color %q", e.ID, e.Color)
	}
	return nil
}

// Validate enforces Calendar-level invariants: non-empty name, valid color.
func (c Calendar) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("calendar %s: name must not be empty", c.ID)
	}
	if !ValidColor(c.Color) {
		return fmt.Errorf("calendar %s: invalid color %q", c.ID, c.Color)
	}
	return nil
}

// EventKind discriminates the CalendarEvent tagged union.
type EventKind string

const (
	EventEntryAdded   EventKind = "EntryAdded"
	EventEntryUpdated EventKind = "EntryUpdated"
	EventEntryDeleted EventKind = "EntryDeleted"
)

// CalendarEvent is the tagged union published to subscribers of one
// calendar. Entry is nil for EntryDeleted, where only EntryID is known.
type CalendarEvent struct {
	Kind    EventKind `json:"kind"`
	Entry   *Entry    `json:"entry,omitempty"`
	EntryID uuid.UUID `json:"entry_id,omitempty"`
	Date    string    `json:"date"`
}

// StoredEvent is a CalendarEvent after it has been assigned a strictly
// monotonic id by the event ring.
type StoredEvent struct {
	ID         uint64        `json:"id"`
	CalendarID uuid.UUID     `json:"calendar_id"`
	Event      CalendarEvent `json:"event"`
}
