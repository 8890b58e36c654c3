package ws

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/caravela-games/huntroom/internal/proto"
	"github.com/caravela-games/huntroom/internal/relay"
)

// WSHandler upgrades HTTP connections and bridges them to the relay hub.
// The first client frame must subscribe to a channel; everything after is
// track/untrack/broadcast on that channel.
type WSHandler struct {
	hub *relay.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new websocket handler.
func NewWSHandler(hub *relay.Hub, logger *zerolog.Logger) http.Handler {
	return &WSHandler{hub: hub, log: logger}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var first proto.ClientFrame
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		h.log.Warn().Err(err).Msg("read subscribe frame")
		return
	}
	if first.Type != proto.ClientTypeSubscribe || first.Channel == "" || first.Key == "" {
		_ = wsjson.Write(ctx, conn, proto.ServerFrame{
			Type:  proto.ServerTypeError,
			Error: &proto.Error{Code: proto.ErrCodeBadFrame, Msg: "first frame must subscribe with channel and key"},
		})
		conn.Close(websocket.StatusPolicyViolation, "subscribe required")
		return
	}

	sub := h.hub.Subscribe(first.Channel, first.Key)
	defer h.hub.Unsubscribe(first.Channel, sub)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, first.Channel, sub)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sub)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("key", sub.Key).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, channelName string, sub *relay.Subscriber) error {
	for {
		var frame proto.ClientFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return err
		}

		switch frame.Type {
		case proto.ClientTypeTrack:
			h.hub.Track(channelName, sub, frame.Payload)

		case proto.ClientTypeUntrack:
			h.hub.Untrack(channelName, sub)

		case proto.ClientTypeBroadcast:
			if frame.Event == "" {
				if err := h.writeError(ctx, conn, proto.ErrCodeBadFrame, "broadcast requires an event"); err != nil {
					return err
				}
				continue
			}
			h.hub.Broadcast(channelName, frame.Event, frame.Payload)

		case proto.ClientTypeSubscribe:
			if err := h.writeError(ctx, conn, proto.ErrCodeAlreadyJoined, "already subscribed"); err != nil {
				return err
			}

		default:
			if err := h.writeError(ctx, conn, proto.ErrCodeBadFrame, "unknown frame type"); err != nil {
				return err
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sub *relay.Subscriber) error {
	for {
		select {
		case frame := <-sub.Out:
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				h.log.Error().Err(err).Str("key", sub.Key).Msg("write ws frame")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, code, msg string) error {
	return wsjson.Write(ctx, conn, proto.ServerFrame{
		Type:  proto.ServerTypeError,
		Error: &proto.Error{Code: code, Msg: msg},
	})
}
