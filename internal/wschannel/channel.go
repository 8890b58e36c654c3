// Package wschannel implements room.Channel over a websocket connection to
// the relay. One read-loop goroutine dispatches inbound frames to the
// registered handlers sequentially, so all synchronizer state mutation is
// serialized.
package wschannel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/caravela-games/huntroom/internal/proto"
	"github.com/caravela-games/huntroom/internal/room"
)

const writeTimeout = 5 * time.Second

var errNotSubscribed = errors.New("channel not subscribed")

// Channel is a websocket-backed room.Channel. Construct with New, register
// handlers, then Subscribe.
type Channel struct {
	relayURL    string
	channelName string
	presenceKey string
	log         *zerolog.Logger

	syncFn     func([]room.PresenceRecord)
	broadcasts map[string]func(json.RawMessage)

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	ready  chan struct{}
	cancel context.CancelFunc
}

// New builds an unconnected channel bound to a relay URL, channel name and
// presence key.
func New(relayURL, channelName, presenceKey string, logger *zerolog.Logger) *Channel {
	return &Channel{
		relayURL:    relayURL,
		channelName: channelName,
		presenceKey: presenceKey,
		log:         logger,
		broadcasts:  make(map[string]func(json.RawMessage)),
		ready:       make(chan struct{}),
	}
}

// OnSync registers the presence snapshot handler. Must be called before
// Subscribe.
func (c *Channel) OnSync(fn func([]room.PresenceRecord)) {
	c.syncFn = fn
}

// OnBroadcast registers the handler for a named broadcast kind. Must be
// called before Subscribe.
func (c *Channel) OnBroadcast(event string, fn func(json.RawMessage)) {
	c.broadcasts[event] = fn
}

// Subscribe dials the relay, sends the subscribe frame and returns once the
// relay confirms the subscription. The read loop keeps dispatching handler
// callbacks until the connection drops or Unsubscribe is called.
func (c *Channel) Subscribe(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.relayURL, nil)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.mu.Unlock()

	if err := wsjson.Write(ctx, conn, proto.ClientFrame{
		Type:     proto.ClientTypeSubscribe,
		Channel:  c.channelName,
		Key:      c.presenceKey,
		Protocol: proto.ProtocolVersion,
	}); err != nil {
		cancel()
		conn.Close(websocket.StatusInternalError, "subscribe failed")
		return fmt.Errorf("send subscribe: %w", err)
	}

	go c.readLoop(loopCtx, conn)

	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		c.Unsubscribe()
		return ctx.Err()
	}
}

// Track upserts this client's presence payload.
func (c *Channel) Track(rec room.PresenceRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal presence: %w", err)
	}
	return c.write(proto.ClientFrame{Type: proto.ClientTypeTrack, Payload: payload})
}

// Send broadcasts a payload under the named event. Fire and forget: a
// write error means the frame is lost, nothing retries.
func (c *Channel) Send(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.write(proto.ClientFrame{Type: proto.ClientTypeBroadcast, Event: event, Payload: raw})
}

// Unsubscribe closes the connection. Immediate and unconditional.
func (c *Channel) Unsubscribe() error {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	return conn.Close(websocket.StatusNormalClosure, "leaving")
}

func (c *Channel) write(frame proto.ClientFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.closed {
		return errNotSubscribed
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, frame)
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame proto.ServerFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && !errors.Is(err, context.Canceled) {
				c.log.Warn().Err(err).Str("channel", c.channelName).Msg("relay connection lost")
			}
			return
		}

		switch frame.Type {
		case proto.ServerTypeStatus:
			if frame.Status == proto.StatusSubscribed {
				select {
				case <-c.ready:
				default:
					close(c.ready)
				}
			}

		case proto.ServerTypeSync:
			if c.syncFn == nil {
				continue
			}
			records := make([]room.PresenceRecord, 0, len(frame.Presence))
			for _, raw := range frame.Presence {
				var rec room.PresenceRecord
				if err := json.Unmarshal(raw, &rec); err != nil {
					c.log.Warn().Err(err).Str("channel", c.channelName).Msg("malformed presence record")
					continue
				}
				records = append(records, rec)
			}
			c.syncFn(records)

		case proto.ServerTypeBroadcast:
			if fn := c.broadcasts[frame.Event]; fn != nil {
				fn(frame.Payload)
			}

		case proto.ServerTypeError:
			if frame.Error != nil {
				c.log.Warn().Str("code", frame.Error.Code).Str("msg", frame.Error.Msg).Msg("relay error")
			}
		}
	}
}
