package room

// RoomState is the client-local projection of the room: everything the view
// needs to render. It is mutated only through reduce, inside the inbound
// event handlers and the optimistic paths of outbound actions.
type RoomState struct {
	Players     []Player
	Messages    []ChatMessage
	PinnedScene *SceneInfo
	Connected   bool
}

type stateEvent interface{ isStateEvent() }

// presenceSynced replaces the whole player list with the provider's latest
// snapshot.
type presenceSynced struct {
	records []PresenceRecord
}

// chatReceived appends one message to the log. Display order is local
// receipt order; no reconciliation across senders.
type chatReceived struct {
	msg ChatMessage
}

// sheetUpdated patches the sheet of the named player, if present.
type sheetUpdated struct {
	update SheetUpdate
}

// sceneUpdated replaces the pinned scene outright; nil clears it.
type sceneUpdated struct {
	scene *SceneInfo
}

// connectionChanged flips the connected flag.
type connectionChanged struct {
	connected bool
}

func (presenceSynced) isStateEvent()    {}
func (chatReceived) isStateEvent()      {}
func (sheetUpdated) isStateEvent()      {}
func (sceneUpdated) isStateEvent()      {}
func (connectionChanged) isStateEvent() {}

// reduce produces the next state from the current one and a single event.
// It never mutates its input; slices are copied before modification.
func reduce(s RoomState, ev stateEvent) RoomState {
	switch e := ev.(type) {
	case presenceSynced:
		players := make([]Player, 0, len(e.records))
		for _, rec := range e.records {
			players = append(players, playerFromPresence(rec))
		}
		s.Players = players

	case chatReceived:
		msgs := make([]ChatMessage, 0, len(s.Messages)+1)
		msgs = append(msgs, s.Messages...)
		s.Messages = append(msgs, e.msg)

	case sheetUpdated:
		players := make([]Player, len(s.Players))
		copy(players, s.Players)
		for i := range players {
			if players[i].ID == e.update.PlayerID {
				players[i].Sheet = e.update.Sheet
			}
		}
		s.Players = players

	case sceneUpdated:
		s.PinnedScene = e.scene

	case connectionChanged:
		s.Connected = e.connected
	}

	return s
}
