package sseclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoderResumesAcrossChunkBoundary(t *testing.T) {
	var d Decoder

	events := d.Feed("event: EntryAdded\ndata: {\"a\":")
	assert.Empty(t, events, "no complete block yet")

	events = d.Feed("1}\nid: 42\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "EntryAdded", events[0].Type)
	assert.Equal(t, `{"a":1}`, events[0].Data)
	require.NotNil(t, events[0].ID)
	assert.Equal(t, uint64(42), *events[0].ID)

	id, ok := d.LastEventID()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
}

func TestDecoderParsesMultipleEventsInOneChunk(t *testing.T) {
	var d Decoder
	events := d.Feed("event: EntryAdded\nid: 1\ndata: {}\n\nevent: EntryDeleted\nid: 2\ndata: {}\n\n")
	require.Len(t, events, 2)
	assert.Equal(t, "EntryAdded", events[0].Type)
	assert.Equal(t, "EntryDeleted", events[1].Type)
}

func TestDecoderCommentOnlyBlockIsHeartbeatWithEmptyType(t *testing.T) {
	var d Decoder
	events := d.Feed(":keepalive\n\n")
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Type)
}

func TestDecoderMultilineDataIsJoinedWithNewlines(t *testing.T) {
	var d Decoder
	events := d.Feed("event: EntryAdded\ndata: line1\ndata: line2\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "line1\nline2", events[0].Data)
}

func TestDecoderWithoutIDLeavesLastEventIDUnset(t *testing.T) {
	var d Decoder
	_, ok := d.LastEventID()
	assert.False(t, ok)

	d.Feed("event: EntryAdded\ndata: {}\n\n")
	_, ok = d.LastEventID()
	assert.False(t, ok, "a block with no id: line must not advance LastEventID")
}

func TestDecoderFeedByteAtATimeStillAssemblesCorrectly(t *testing.T) {
	var d Decoder
	full := "event: EntryUpdated\nid: 7\ndata: {\"x\":true}\n\n"
	var all []Event
	for i := 0; i < len(full); i++ {
		all = append(all, d.Feed(string(full[i]))...)
	}
	require.Len(t, all, 1)
	assert.Equal(t, "EntryUpdated", all[0].Type)
	assert.Equal(t, `{"x":true}`, all[0].Data)
}
