package room

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caravela-games/huntroom/internal/dice"
	"github.com/caravela-games/huntroom/internal/sheet"
)

// Synchronizer maintains one client's live view of a room and is the only
// sanctioned way to mutate room-visible state. It owns a fresh client
// identity for its lifetime and exactly one channel subscription.
//
// All outbound operations are fire and forget: send failures are logged and
// dropped, never returned to the caller. Calls before Join or after Leave
// are no-ops.
type Synchronizer struct {
	mu    sync.Mutex
	state RoomState

	ch       Channel
	log      *zerolog.Logger
	roomCode string
	self     PresenceRecord

	joined bool
	left   bool
}

// New builds a synchronizer for the given room and local player identity.
// The client id is generated fresh; it is the presence key and the playerId
// on everything this client originates.
func New(ch Channel, roomCode, playerName string, isMaster bool, logger *zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		ch:       ch,
		log:      logger,
		roomCode: roomCode,
		self: PresenceRecord{
			ID:       uuid.NewString(),
			Name:     playerName,
			IsMaster: isMaster,
		},
	}
}

// PlayerID returns this client's identity.
func (s *Synchronizer) PlayerID() string { return s.self.ID }

// RoomCode returns the room this synchronizer is bound to.
func (s *Synchronizer) RoomCode() string { return s.roomCode }

// Join registers the event handlers, subscribes to the channel, tracks this
// client's presence and announces the join. The presence track is issued
// before the join message so other clients render the announcement without
// depending on a presence lookup.
func (s *Synchronizer) Join(ctx context.Context) error {
	s.ch.OnSync(s.handleSync)
	s.ch.OnBroadcast(EventChat, s.handleChat)
	s.ch.OnBroadcast(EventSheetUpdate, s.handleSheetUpdate)
	s.ch.OnBroadcast(EventSceneUpdate, s.handleSceneUpdate)

	if err := s.ch.Subscribe(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.self.OnlineAt = time.Now().UTC()
	rec := s.self
	s.joined = true
	s.state = reduce(s.state, connectionChanged{connected: true})
	s.mu.Unlock()

	if err := s.ch.Track(rec); err != nil {
		s.log.Warn().Err(err).Str("room", s.roomCode).Msg("track presence failed")
	}

	s.sendSystem(rec.Name + " entrou na sala")
	return nil
}

// Leave announces the departure and tears the channel down. Best effort: no
// acknowledgment is awaited, and an already-dead network loses the message.
func (s *Synchronizer) Leave() {
	s.mu.Lock()
	if !s.joined || s.left {
		s.mu.Unlock()
		return
	}
	name := s.self.Name
	s.mu.Unlock()

	s.send(EventChat, s.systemMessage(name+" saiu da sala"))

	s.mu.Lock()
	s.left = true
	s.state = reduce(s.state, connectionChanged{connected: false})
	s.mu.Unlock()

	if err := s.ch.Unsubscribe(); err != nil {
		s.log.Warn().Err(err).Str("room", s.roomCode).Msg("unsubscribe failed")
	}
}

// SendMessage broadcasts a plain chat message. The caller is responsible
// for trimming; empty content is dropped here as a last resort.
func (s *Synchronizer) SendMessage(content string) {
	if content == "" {
		return
	}
	s.send(EventChat, ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   s.self.ID,
		PlayerName: s.self.Name,
		Content:    content,
		Type:       MessageTypeChat,
		Timestamp:  time.Now().UTC(),
	})
}

// SendRoll broadcasts a dice roll as a chat message. Content falls back to
// the roll's default description when none is supplied.
func (s *Synchronizer) SendRoll(result dice.Result, description string, isSecret bool) {
	content := description
	if content == "" {
		content = result.DefaultDescription()
	}
	s.send(EventChat, ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   s.self.ID,
		PlayerName: s.self.Name,
		Content:    content,
		Type:       MessageTypeRoll,
		Timestamp:  time.Now().UTC(),
		RollResult: &result,
		IsSecret:   isSecret,
	})
}

// UpdateSheet re-tracks this client's presence with the new sheet attached,
// so late joiners' first sync already carries it, and broadcasts a
// sheet_update so already-joined peers update without waiting for the next
// sync. Both writes are required; the brief window where a peer sees the
// broadcast before its next sync is accepted eventual consistency.
func (s *Synchronizer) UpdateSheet(sh sheet.CharacterSheet) {
	s.mu.Lock()
	if !s.joined || s.left {
		s.mu.Unlock()
		return
	}
	s.self.Sheet = &sh
	s.self.OnlineAt = time.Now().UTC()
	rec := s.self
	s.mu.Unlock()

	if err := s.ch.Track(rec); err != nil {
		s.log.Warn().Err(err).Str("room", s.roomCode).Msg("re-track presence failed")
	}
	s.send(EventSheetUpdate, SheetUpdate{PlayerID: rec.ID, Sheet: &sh})
}

// UpdateScene pins (or, with nil, clears) the room's scene: local state is
// replaced immediately, the scene_update is broadcast, and a new non-nil
// scene is also announced in chat. Clearing posts no announcement.
func (s *Synchronizer) UpdateScene(scene *SceneInfo) {
	s.mu.Lock()
	if !s.joined || s.left {
		s.mu.Unlock()
		return
	}
	s.state = reduce(s.state, sceneUpdated{scene: scene})
	s.mu.Unlock()

	s.send(EventSceneUpdate, scene)
	if scene != nil {
		s.sendSystem("🎬 Nova cena: " + scene.Title)
	}
}

// Snapshot returns a copy of the current room state for rendering.
func (s *Synchronizer) Snapshot() RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	snap.Players = append([]Player(nil), s.state.Players...)
	snap.Messages = append([]ChatMessage(nil), s.state.Messages...)
	return snap
}

func (s *Synchronizer) handleSync(records []PresenceRecord) {
	s.apply(presenceSynced{records: records})
}

func (s *Synchronizer) handleChat(payload json.RawMessage) {
	var msg ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.log.Warn().Err(err).Str("room", s.roomCode).Msg("malformed chat payload")
		return
	}
	s.apply(chatReceived{msg: msg})
}

func (s *Synchronizer) handleSheetUpdate(payload json.RawMessage) {
	var update SheetUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		s.log.Warn().Err(err).Str("room", s.roomCode).Msg("malformed sheet_update payload")
		return
	}
	s.apply(sheetUpdated{update: update})
}

func (s *Synchronizer) handleSceneUpdate(payload json.RawMessage) {
	var scene *SceneInfo
	if err := json.Unmarshal(payload, &scene); err != nil {
		s.log.Warn().Err(err).Str("room", s.roomCode).Msg("malformed scene_update payload")
		return
	}
	s.apply(sceneUpdated{scene: scene})
}

func (s *Synchronizer) apply(ev stateEvent) {
	s.mu.Lock()
	s.state = reduce(s.state, ev)
	s.mu.Unlock()
}

func (s *Synchronizer) sendSystem(content string) {
	s.send(EventChat, s.systemMessage(content))
}

func (s *Synchronizer) systemMessage(content string) ChatMessage {
	return ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   systemPlayerID,
		PlayerName: systemPlayerName,
		Content:    content,
		Type:       MessageTypeSystem,
		Timestamp:  time.Now().UTC(),
	}
}

// send guards on lifecycle state and drops failures; broadcasts never fail
// loudly to the caller.
func (s *Synchronizer) send(event string, payload any) {
	s.mu.Lock()
	ok := s.joined && !s.left
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.ch.Send(event, payload); err != nil {
		s.log.Warn().Err(err).Str("room", s.roomCode).Str("event", event).Msg("broadcast dropped")
	}
}
