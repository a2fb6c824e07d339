package eventstream

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/pubsub"
)

func TestPublisherNumbersEventExactlyOnceAcrossTwoSubscribers(t *testing.T) {
	ring := NewRing(0)
	ps := pubsub.NewLocal()
	pub := NewPublisher(ring, ps, nil)
	ctx := context.Background()
	cid := uuid.New()

	recvA, err := ps.Subscribe(ctx, cid)
	require.NoError(t, err)
	recvB, err := ps.Subscribe(ctx, cid)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, cid, calendarmodel.CalendarEvent{Kind: calendarmodel.EventEntryAdded}))

	var gotA, gotB calendarmodel.StoredEvent
	select {
	case gotA = <-recvA.Events():
	case <-time.After(time.Second):
		t.Fatal("subscriber A never received the event")
	}
	select {
	case gotB = <-recvB.Events():
	case <-time.After(time.Second):
		t.Fatal("subscriber B never received the event")
	}

	assert.Equal(t, uint64(1), gotA.ID)
	assert.Equal(t, gotA.ID, gotB.ID, "both subscribers must observe the same minted id")

	// A second publish must not reuse or skip ids.
	require.NoError(t, pub.Publish(ctx, cid, calendarmodel.CalendarEvent{Kind: calendarmodel.EventEntryUpdated}))
	select {
	case got := <-recvA.Events():
		assert.Equal(t, uint64(2), got.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber A never received the second event")
	}

	assert.Len(t, ring.EventsSince(cid, 0), 2, "the ring retains exactly the two published events, not four")
}
