// Command ws_smoke is a manual smoke client for the relay: it subscribes,
// tracks a presence record, sends one chat broadcast and prints everything
// the relay pushes back until the timeout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/caravela-games/huntroom/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "relay websocket address")
	channel := flag.String("channel", "room:SMOKE", "channel name to subscribe")
	key := flag.String("key", "smoke-tester", "presence key")
	text := flag.String("text", "hello from smoke test", "chat content to broadcast")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := wsjson.Write(ctx, conn, proto.ClientFrame{
		Type:     proto.ClientTypeSubscribe,
		Channel:  *channel,
		Key:      *key,
		Protocol: proto.ProtocolVersion,
	}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	presence, _ := json.Marshal(map[string]any{"id": *key, "name": *key})
	if err := wsjson.Write(ctx, conn, proto.ClientFrame{
		Type:    proto.ClientTypeTrack,
		Payload: presence,
	}); err != nil {
		return fmt.Errorf("track: %w", err)
	}

	chat, _ := json.Marshal(map[string]any{"content": *text, "playerName": *key})
	if err := wsjson.Write(ctx, conn, proto.ClientFrame{
		Type:    proto.ClientTypeBroadcast,
		Event:   "chat",
		Payload: chat,
	}); err != nil {
		return fmt.Errorf("broadcast: %w", err)
	}

	for {
		var frame proto.ServerFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		out, _ := json.Marshal(frame)
		fmt.Println(string(out))
	}
}
