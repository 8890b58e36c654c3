// Package proto defines the JSON frames exchanged between clients and the
// relay over a websocket. The relay is a dumb pipe: it understands
// subscriptions, presence tracking and broadcast fan-out, and never
// inspects payloads.
package proto

import "encoding/json"

const ProtocolVersion = 1

// Client frame types.
const (
	ClientTypeSubscribe = "subscribe"
	ClientTypeTrack     = "track"
	ClientTypeUntrack   = "untrack"
	ClientTypeBroadcast = "broadcast"
)

// Server frame types.
const (
	ServerTypeStatus    = "status"
	ServerTypeSync      = "sync"
	ServerTypeBroadcast = "broadcast"
	ServerTypeError     = "error"
)

// Subscription status values.
const (
	StatusSubscribed = "subscribed"
)

// Error codes.
const (
	ErrCodeBadFrame      = "bad_frame"
	ErrCodeNotSubscribed = "not_subscribed"
	ErrCodeAlreadyJoined = "already_subscribed"
)

// ClientFrame is the envelope for frames coming from a client.
type ClientFrame struct {
	Type string `json:"type"`
	// Channel and Key accompany a subscribe frame: the channel name to
	// join and this client's presence key.
	Channel string `json:"channel,omitempty"`
	Key     string `json:"key,omitempty"`
	// Event names the broadcast kind on broadcast frames.
	Event string `json:"event,omitempty"`
	// Payload carries the presence record (track) or broadcast body.
	Payload json.RawMessage `json:"payload,omitempty"`
	// Protocol is sent on subscribe for forward compatibility.
	Protocol int `json:"protocol,omitempty"`
}

// ServerFrame is the envelope for frames going to a client.
type ServerFrame struct {
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
	Event  string `json:"event,omitempty"`
	// Payload carries the broadcast body.
	Payload json.RawMessage `json:"payload,omitempty"`
	// Presence carries the full presence snapshot on sync frames: every
	// tracked payload, flattened, in no particular order.
	Presence []json.RawMessage `json:"presence,omitempty"`
	Error    *Error            `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
