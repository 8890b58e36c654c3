// Package room implements the client-side room synchronizer: one client's
// live view of a room's players, messages and pinned scene, derived from
// the realtime channel's presence and broadcast streams.
package room

import (
	"time"

	"github.com/caravela-games/huntroom/internal/dice"
	"github.com/caravela-games/huntroom/internal/sheet"
)

// Broadcast event kinds on the room channel.
const (
	EventChat        = "chat"
	EventSheetUpdate = "sheet_update"
	EventSceneUpdate = "scene_update"
)

// Identity used for system-authored chat messages (joins, leaves, scenes).
const (
	systemPlayerID   = "system"
	systemPlayerName = "Sistema"
)

// MessageType distinguishes chat entries.
type MessageType string

const (
	MessageTypeChat   MessageType = "message"
	MessageTypeRoll   MessageType = "roll"
	MessageTypeSystem MessageType = "system"
)

// PresenceRecord is the payload each client tracks for itself in the
// channel's presence set.
type PresenceRecord struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	IsMaster bool                  `json:"isMaster"`
	Sheet    *sheet.CharacterSheet `json:"sheet"`
	OnlineAt time.Time             `json:"online_at"`
}

// Player is one entry of the room's player list, derived entirely from the
// current presence set and never independently stored.
type Player struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	IsMaster bool                  `json:"isMaster"`
	Sheet    *sheet.CharacterSheet `json:"sheet"`
	OnlineAt time.Time             `json:"online_at"`
}

func playerFromPresence(rec PresenceRecord) Player {
	return Player{
		ID:       rec.ID,
		Name:     rec.Name,
		IsMaster: rec.IsMaster,
		Sheet:    rec.Sheet,
		OnlineAt: rec.OnlineAt,
	}
}

// ChatMessage is an immutable, append-only entry of the local message log.
type ChatMessage struct {
	ID         string       `json:"id"`
	PlayerID   string       `json:"playerId"`
	PlayerName string       `json:"playerName"`
	Content    string       `json:"content"`
	Type       MessageType  `json:"type"`
	Timestamp  time.Time    `json:"timestamp"`
	RollResult *dice.Result `json:"rollResult,omitempty"`
	IsSecret   bool         `json:"isSecret,omitempty"`
}

// SheetUpdate is the payload of a sheet_update broadcast.
type SheetUpdate struct {
	PlayerID string                `json:"playerId"`
	Sheet    *sheet.CharacterSheet `json:"sheet"`
}

// SceneInfo is the room-scoped pinned scene. Last writer wins; nil means no
// scene is pinned.
type SceneInfo struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Aspects     []string  `json:"aspects"`
	PinnedBy    string    `json:"pinnedBy"`
	Timestamp   time.Time `json:"timestamp"`
}
