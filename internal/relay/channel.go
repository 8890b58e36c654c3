package relay

import (
	"encoding/json"

	"github.com/caravela-games/huntroom/internal/proto"
)

// subscriberBuffer is the per-subscriber outbound queue size. A subscriber
// that falls further behind starts losing frames (at-most-once delivery).
const subscriberBuffer = 64

// Subscriber is one connected client of a channel. Frames for it are queued
// on Out; the transport layer drains the queue onto the wire.
type Subscriber struct {
	Key string
	Out chan proto.ServerFrame
}

// NewSubscriber builds a subscriber with the given presence key.
func NewSubscriber(key string) *Subscriber {
	return &Subscriber{
		Key: key,
		Out: make(chan proto.ServerFrame, subscriberBuffer),
	}
}

// channel groups subscribers of the same room channel together with the
// channel's presence set. Access is guarded by the hub's mutex.
type channel struct {
	name     string
	subs     map[*Subscriber]struct{}
	presence map[string]json.RawMessage
}

func newChannel(name string) *channel {
	return &channel{
		name:     name,
		subs:     make(map[*Subscriber]struct{}),
		presence: make(map[string]json.RawMessage),
	}
}

// broadcast queues a frame for every subscriber, the originator included.
// Slow consumers lose the frame rather than blocking the channel.
func (c *channel) broadcast(frame proto.ServerFrame) {
	for sub := range c.subs {
		select {
		case sub.Out <- frame:
		default:
			// Drop if slow consumer.
		}
	}
}

// syncFrame snapshots the current presence set into a sync frame.
func (c *channel) syncFrame() proto.ServerFrame {
	records := make([]json.RawMessage, 0, len(c.presence))
	for _, payload := range c.presence {
		records = append(records, payload)
	}
	return proto.ServerFrame{Type: proto.ServerTypeSync, Presence: records}
}

func (c *channel) empty() bool {
	return len(c.subs) == 0
}
