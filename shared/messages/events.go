package messages

import "github.com/automoto/mirra-netsync/shared/netcomponents"

// EventType is the discriminator carried by every inbound game event.
type EventType uint8

const (
	EventStateUpdate EventType = iota
	EventPingUpdate
	EventGameFinished
	EventInitialPositions
	EventSelectedCharacterUpdate
	EventFinishCharacterSelection
)

var eventTypeNames = map[EventType]string{
	EventStateUpdate:              "state_update",
	EventPingUpdate:               "ping_update",
	EventGameFinished:             "game_finished",
	EventInitialPositions:         "initial_positions",
	EventSelectedCharacterUpdate:  "selected_character_update",
	EventFinishCharacterSelection: "finish_character_selection",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is a decoded inbound message. The set of implementations is closed;
// consumers switch over the concrete types.
type Event interface {
	Type() EventType
	event()
}

// StateUpdate carries one server tick's world state.
type StateUpdate struct {
	Snapshot *netcomponents.Snapshot
}

// PingUpdate is the server's measured round-trip latency for this client.
type PingUpdate struct {
	LatencyMs uint64
}

// GameFinished is sent once a single player is left standing.
type GameFinished struct {
	Winner  netcomponents.EntityState
	Players []netcomponents.EntityState
}

// InitialPositions is sent on join with every player's spawn point.
type InitialPositions struct {
	Players []netcomponents.EntityState
}

// SelectedCharacterUpdate maps player id to chosen character name.
type SelectedCharacterUpdate struct {
	Selected map[uint64]string
}

// FinishCharacterSelection closes character selection.
type FinishCharacterSelection struct {
	Selected map[uint64]string
	Players  []netcomponents.EntityState
}

func (StateUpdate) Type() EventType              { return EventStateUpdate }
func (PingUpdate) Type() EventType               { return EventPingUpdate }
func (GameFinished) Type() EventType             { return EventGameFinished }
func (InitialPositions) Type() EventType         { return EventInitialPositions }
func (SelectedCharacterUpdate) Type() EventType  { return EventSelectedCharacterUpdate }
func (FinishCharacterSelection) Type() EventType { return EventFinishCharacterSelection }

func (StateUpdate) event()              {}
func (PingUpdate) event()               {}
func (GameFinished) event()             {}
func (InitialPositions) event()         {}
func (SelectedCharacterUpdate) event()  {}
func (FinishCharacterSelection) event() {}
