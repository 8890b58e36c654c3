package room

import (
	"testing"
	"time"

	"github.com/caravela-games/huntroom/internal/sheet"
)

func TestReducePresenceReplacementIsTotal(t *testing.T) {
	prior := RoomState{
		Players: []Player{
			{ID: "stale-1", Name: "Ghost"},
			{ID: "stale-2", Name: "Echo"},
		},
	}

	next := reduce(prior, presenceSynced{records: []PresenceRecord{
		{ID: "x", Name: "Mara", IsMaster: false},
	}})

	if len(next.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(next.Players))
	}
	if next.Players[0].ID != "x" || next.Players[0].Name != "Mara" {
		t.Fatalf("unexpected player: %+v", next.Players[0])
	}
	// prior state untouched
	if len(prior.Players) != 2 {
		t.Fatalf("reduce mutated its input: %+v", prior.Players)
	}
}

func TestReduceEmptySyncClearsPlayers(t *testing.T) {
	prior := RoomState{Players: []Player{{ID: "x"}}}
	next := reduce(prior, presenceSynced{records: nil})
	if len(next.Players) != 0 {
		t.Fatalf("expected empty player list, got %+v", next.Players)
	}
}

func TestReduceChatAppendsInReceiptOrder(t *testing.T) {
	s := RoomState{}
	s = reduce(s, chatReceived{msg: ChatMessage{ID: "1", Content: "first"}})
	s = reduce(s, chatReceived{msg: ChatMessage{ID: "2", Content: "second"}})

	if len(s.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(s.Messages))
	}
	if s.Messages[0].ID != "1" || s.Messages[1].ID != "2" {
		t.Fatalf("messages out of order: %+v", s.Messages)
	}
}

func TestReduceSheetUpdatePatchesOnlyNamedPlayer(t *testing.T) {
	sheetA := &sheet.CharacterSheet{Name: "Alpha"}
	sheetB := &sheet.CharacterSheet{Name: "Bravo"}

	s := RoomState{Players: []Player{
		{ID: "a", Sheet: sheetA},
		{ID: "b"},
	}}

	s = reduce(s, sheetUpdated{update: SheetUpdate{PlayerID: "b", Sheet: sheetB}})

	if s.Players[0].Sheet != sheetA {
		t.Fatalf("player a's sheet changed: %+v", s.Players[0].Sheet)
	}
	if s.Players[1].Sheet != sheetB {
		t.Fatalf("player b's sheet not patched: %+v", s.Players[1].Sheet)
	}
}

func TestReduceSheetUpdateForAbsentPlayerIsNoop(t *testing.T) {
	s := RoomState{Players: []Player{{ID: "a"}}}
	next := reduce(s, sheetUpdated{update: SheetUpdate{PlayerID: "ghost", Sheet: &sheet.CharacterSheet{}}})

	if next.Players[0].Sheet != nil {
		t.Fatalf("unexpected sheet patch: %+v", next.Players[0])
	}
}

func TestReduceSceneReplacesOutright(t *testing.T) {
	old := &SceneInfo{
		Title:       "Velho Cais",
		Description: "nevoeiro denso",
		Aspects:     []string{"Escuro", "Molhado"},
		PinnedBy:    "Mara",
		Timestamp:   time.Now(),
	}
	s := RoomState{PinnedScene: old}

	replacement := &SceneInfo{Title: "Beco Escuro", PinnedBy: "Mara"}
	s = reduce(s, sceneUpdated{scene: replacement})

	if s.PinnedScene != replacement {
		t.Fatalf("scene not replaced: %+v", s.PinnedScene)
	}
	if len(s.PinnedScene.Aspects) != 0 {
		t.Fatalf("old aspects leaked into new scene: %+v", s.PinnedScene.Aspects)
	}

	s = reduce(s, sceneUpdated{scene: nil})
	if s.PinnedScene != nil {
		t.Fatalf("nil scene must clear the pin: %+v", s.PinnedScene)
	}
}
