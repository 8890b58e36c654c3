// Package relay implements the realtime channel provider: named channels
// carrying a presence set and fire-and-forget broadcast fan-out. It keeps
// no history and no state beyond currently connected subscribers.
package relay

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/caravela-games/huntroom/internal/proto"
)

// Hub owns every live channel, creating them on first subscribe and
// dropping them once the last subscriber is gone.
type Hub struct {
	mu       sync.Mutex
	channels map[string]*channel
	log      *zerolog.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		channels: make(map[string]*channel),
		log:      logger,
	}
}

// Subscribe registers a new subscriber on the named channel and immediately
// queues the current presence snapshot for it, so a late joiner sees the
// room before anyone re-tracks.
func (h *Hub) Subscribe(channelName, key string) *Subscriber {
	sub := NewSubscriber(key)

	h.mu.Lock()
	ch := h.channels[channelName]
	if ch == nil {
		ch = newChannel(channelName)
		h.channels[channelName] = ch
	}
	ch.subs[sub] = struct{}{}
	sub.Out <- proto.ServerFrame{Type: proto.ServerTypeStatus, Status: proto.StatusSubscribed}
	sub.Out <- ch.syncFrame()
	h.mu.Unlock()

	h.log.Debug().Str("channel", channelName).Str("key", key).Msg("subscriber joined")
	return sub
}

// Unsubscribe removes the subscriber, drops its presence entry and notifies
// the rest of the channel with a fresh sync.
func (h *Hub) Unsubscribe(channelName string, sub *Subscriber) {
	h.mu.Lock()
	ch := h.channels[channelName]
	if ch == nil {
		h.mu.Unlock()
		return
	}
	delete(ch.subs, sub)
	_, tracked := ch.presence[sub.Key]
	delete(ch.presence, sub.Key)
	if ch.empty() {
		delete(h.channels, channelName)
	} else if tracked {
		ch.broadcast(ch.syncFrame())
	}
	h.mu.Unlock()

	h.log.Debug().Str("channel", channelName).Str("key", sub.Key).Msg("subscriber left")
}

// Track upserts the subscriber's presence payload and fans the new full
// snapshot out to everyone on the channel.
func (h *Hub) Track(channelName string, sub *Subscriber, payload json.RawMessage) {
	h.mu.Lock()
	ch := h.channels[channelName]
	if ch == nil {
		h.mu.Unlock()
		return
	}
	ch.presence[sub.Key] = payload
	ch.broadcast(ch.syncFrame())
	h.mu.Unlock()
}

// Untrack removes the subscriber's presence entry without disconnecting it.
func (h *Hub) Untrack(channelName string, sub *Subscriber) {
	h.mu.Lock()
	ch := h.channels[channelName]
	if ch == nil {
		h.mu.Unlock()
		return
	}
	if _, ok := ch.presence[sub.Key]; ok {
		delete(ch.presence, sub.Key)
		ch.broadcast(ch.syncFrame())
	}
	h.mu.Unlock()
}

// Broadcast fans an event out to every subscriber of the channel, the
// sender included. Delivery is at most once; there is no history replay.
func (h *Hub) Broadcast(channelName, event string, payload json.RawMessage) {
	h.mu.Lock()
	ch := h.channels[channelName]
	if ch == nil {
		h.mu.Unlock()
		return
	}
	ch.broadcast(proto.ServerFrame{
		Type:    proto.ServerTypeBroadcast,
		Event:   event,
		Payload: payload,
	})
	h.mu.Unlock()
}

// ChannelCount reports how many channels are live. Used by the health
// endpoint and tests.
func (h *Hub) ChannelCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}
