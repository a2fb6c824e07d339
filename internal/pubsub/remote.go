package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"calendar-backend/internal/cache"
	"calendar-backend/internal/calendarmodel"
)

// Remote is the cross-instance PubSub implementation. Publish
// serializes the event to JSON and PUBLISHes on channel:calendar:{id}.
// Subscribe opens a local broadcast topic for the calendar on first call
// and spawns a background goroutine that SUBSCRIBEs to the remote channel
// and forwards each deserialized event into the local topic; the goroutine
// exits (and removes the forwarding entry) when the remote stream ends,
// which gives reconnect-on-next-subscribe semantics.
type Remote struct {
	client *redis.Client
	local  *Local
	logger *zap.Logger

	mu        sync.Mutex
	forwarder map[uuid.UUID]context.CancelFunc
}

func NewRemote(client *redis.Client, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{
		client:    client,
		local:     NewLocal(),
		logger:    logger,
		forwarder: make(map[uuid.UUID]context.CancelFunc),
	}
}

var _ PubSub = (*Remote)(nil)

func (r *Remote) Publish(ctx context.Context, calendarID uuid.UUID, event calendarmodel.StoredEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, cache.ChannelKey(calendarID), payload).Err()
}

func (r *Remote) Subscribe(ctx context.Context, calendarID uuid.UUID) (*Receiver, error) {
	r.ensureForwarder(calendarID)
	return r.local.Subscribe(ctx, calendarID)
}

// ensureForwarder lazily spawns the background SUBSCRIBE-forwarding
// goroutine for calendarID. The check and the registration both happen
// under r.mu, so a race between two first-subscribers never spawns two
// forwarders.
func (r *Remote) ensureForwarder(calendarID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forwarder[calendarID]; ok {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.forwarder[calendarID] = cancel
	go r.forward(ctx, calendarID)
}

func (r *Remote) forward(ctx context.Context, calendarID uuid.UUID) {
	defer func() {
		r.mu.Lock()
		delete(r.forwarder, calendarID)
		r.mu.Unlock()
	}()

	sub := r.client.Subscribe(ctx, cache.ChannelKey(calendarID))
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event calendarmodel.StoredEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Warn("remote pubsub: failed to decode event", zap.Error(err))
				continue
			}
			if err := r.local.Publish(ctx, calendarID, event); err != nil {
				r.logger.Warn("remote pubsub: local fan-out failed", zap.Error(err))
			}
		}
	}
}
