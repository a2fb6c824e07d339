// Package sseclient implements the client-side half of Server-Sent
// Events: a pure state decoder with no network or I/O dependency of its
// own, so it can be driven from any byte source, an http.Response body,
// a test fixture, a WebView bridge. It is a small stateful struct with an
// explicit Feed method rather than a channel-based decoder, matching how
// the rest of this tree keeps parsing logic synchronous and
// dependency-free.
package sseclient

import "strings"

// Event is one decoded SSE message. Type is empty for a heartbeat/comment
// block; callers should skip those. ID is nil when the block carried no
// id: line.
type Event struct {
	Type string
	Data string
	ID   *uint64
}

// Decoder is a growing-buffer SSE line decoder. The zero value is ready to
// use. It is not safe for concurrent use by multiple goroutines.
type Decoder struct {
	buf        strings.Builder
	lastEventID uint64
	haveLastID  bool
}

// LastEventID returns the highest id seen so far and whether any id has
// been seen yet, for use as the Last-Event-Id header on reconnect.
func (d *Decoder) LastEventID() (uint64, bool) {
	return d.lastEventID, d.haveLastID
}

// Feed appends chunk to the internal buffer and returns every complete
// event block the buffer now contains, in order. Any trailing partial
// block (no terminating blank line yet) remains buffered for the next
// Feed call.
func (d *Decoder) Feed(chunk string) []Event {
	d.buf.WriteString(chunk)
	buffered := d.buf.String()

	var events []Event
	for {
		idx := strings.Index(buffered, "\n\n")
		if idx < 0 {
			break
		}
		block := buffered[:idx]
		buffered = buffered[idx+2:]

		if evt, ok := parseBlock(block); ok {
			if evt.ID != nil && (!d.haveLastID || *evt.ID > d.lastEventID) {
				d.lastEventID = *evt.ID
				d.haveLastID = true
			}
			events = append(events, evt)
		}
	}

	d.buf.Reset()
	d.buf.WriteString(buffered)
	return events
}

// parseBlock decodes one \n-delimited block (no trailing blank line) into
// an Event. A block consisting solely of comment lines (prefixed ":")
// yields an empty-Type heartbeat event; ok is always true, the only
// thing a caller needs to filter is Type == "".
func parseBlock(block string) (Event, bool) {
	var evt Event
	var data []string

	for _, line := range strings.Split(block, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value := splitField(line)
		switch field {
		case "event":
			evt.Type = value
		case "data":
			data = append(data, value)
		case "id":
			if id, err := parseUint64(value); err == nil {
				evt.ID = &id
			}
		}
	}

	evt.Data = strings.Join(data, "\n")
	return evt, true
}

// splitField splits "field: value" or "field:value" into its parts. A
// field with no colon is returned with an empty value, matching the SSE
// spec's lenient line grammar.
func splitField(line string) (field, value string) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return line, ""
	}
	field = line[:i]
	value = line[i+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value
}

func parseUint64(s string) (uint64, error) {
	var n uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errNotDigits
		}
		n = n*10 + uint64(c-'0')
	}
	if s == "" {
		return 0, errNotDigits
	}
	return n, nil
}

var errNotDigits = &parseError{"id is not an unsigned integer"}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
