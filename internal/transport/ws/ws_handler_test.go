package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/caravela-games/huntroom/internal/config"
	"github.com/caravela-games/huntroom/internal/log"
	"github.com/caravela-games/huntroom/internal/proto"
	"github.com/caravela-games/huntroom/internal/relay"
	"github.com/caravela-games/huntroom/internal/room"
	"github.com/caravela-games/huntroom/internal/wschannel"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	hub := relay.NewHub(log.Nop())
	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, log.Nop())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestFirstFrameMustSubscribe(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if err := wsjson.Write(ctx, conn, proto.ClientFrame{Type: proto.ClientTypeBroadcast, Event: "chat"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var frame proto.ServerFrame
	if err := wsjson.Read(ctx, conn, &frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	if frame.Type != proto.ServerTypeError || frame.Error == nil || frame.Error.Code != proto.ErrCodeBadFrame {
		t.Fatalf("expected bad_frame error, got %+v", frame)
	}
}

func TestRawSubscribeTrackBroadcast(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dial := func(key string) *websocket.Conn {
		conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
		if err != nil {
			t.Fatalf("dial %s: %v", key, err)
		}
		t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
		if err := wsjson.Write(ctx, conn, proto.ClientFrame{
			Type:    proto.ClientTypeSubscribe,
			Channel: "room:TEST",
			Key:     key,
		}); err != nil {
			t.Fatalf("subscribe %s: %v", key, err)
		}
		return conn
	}

	readUntil := func(conn *websocket.Conn, frameType string) proto.ServerFrame {
		t.Helper()
		for {
			var frame proto.ServerFrame
			if err := wsjson.Read(ctx, conn, &frame); err != nil {
				t.Fatalf("read: %v", err)
			}
			if frame.Type == frameType {
				return frame
			}
		}
	}

	connA := dial("a")
	connB := dial("b")

	if frame := readUntil(connA, proto.ServerTypeStatus); frame.Status != proto.StatusSubscribed {
		t.Fatalf("unexpected status: %+v", frame)
	}

	if err := wsjson.Write(ctx, connA, proto.ClientFrame{
		Type:    proto.ClientTypeTrack,
		Payload: json.RawMessage(`{"id":"a","name":"alice"}`),
	}); err != nil {
		t.Fatalf("track: %v", err)
	}

	// B sees alice's presence in a sync frame.
	deadline := time.Now().Add(3 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("presence sync never reached B")
		}
		frame := readUntil(connB, proto.ServerTypeSync)
		if len(frame.Presence) == 1 && strings.Contains(string(frame.Presence[0]), "alice") {
			break
		}
	}

	if err := wsjson.Write(ctx, connA, proto.ClientFrame{
		Type:    proto.ClientTypeBroadcast,
		Event:   "chat",
		Payload: json.RawMessage(`{"content":"hi there"}`),
	}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	frame := readUntil(connB, proto.ServerTypeBroadcast)
	if frame.Event != "chat" || !strings.Contains(string(frame.Payload), "hi there") {
		t.Fatalf("unexpected broadcast: %+v", frame)
	}
}

// Full stack: two synchronizers talking through a real relay over real
// websockets.
func TestTwoSynchronizersEndToEnd(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	join := func(name string, isMaster bool) *room.Synchronizer {
		ch := wschannel.New(wsURL(ts), "room:E2E", name+"-key-"+name, log.Nop())
		sync := room.New(ch, "E2E", name, isMaster, log.Nop())
		if err := sync.Join(ctx); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		t.Cleanup(sync.Leave)
		return sync
	}

	mara := join("Mara", false)
	zeca := join("Zeca", true)

	waitFor := func(desc string, pred func() bool) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !pred() {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %s", desc)
			}
			time.Sleep(20 * time.Millisecond)
		}
	}

	// Both end up with a 2-entry player list via presence sync.
	waitFor("full player lists", func() bool {
		return len(mara.Snapshot().Players) == 2 && len(zeca.Snapshot().Players) == 2
	})

	// Chat crosses the wire, and the sender self-echoes exactly once.
	mara.SendMessage("Olá")
	waitFor("chat delivery", func() bool {
		count := func(s *room.Synchronizer) int {
			n := 0
			for _, m := range s.Snapshot().Messages {
				if m.Content == "Olá" {
					n++
				}
			}
			return n
		}
		return count(zeca) == 1 && count(mara) == 1
	})

	// Scene pin propagates and is announced.
	zeca.UpdateScene(&room.SceneInfo{Title: "Beco Escuro", Aspects: []string{"Sem saída"}, PinnedBy: "Zeca"})
	waitFor("scene propagation", func() bool {
		scene := mara.Snapshot().PinnedScene
		return scene != nil && scene.Title == "Beco Escuro"
	})
	waitFor("scene announcement", func() bool {
		for _, m := range mara.Snapshot().Messages {
			if m.Type == room.MessageTypeSystem && strings.Contains(m.Content, "Beco Escuro") {
				return true
			}
		}
		return false
	})

	// Leaving removes the player from the other side's presence.
	zeca.Leave()
	waitFor("departure sync", func() bool {
		players := mara.Snapshot().Players
		return len(players) == 1 && players[0].Name == "Mara"
	})
}
