package network

import (
	"github.com/automoto/mirra-netsync/shared/netcomponents"
)

// Event is something the host reacts to, collected during Tick and returned
// by Client.DrainEvents.
type Event interface {
	clientEvent()
}

// LifecycleEvent reports a transport change.
type LifecycleEvent struct {
	Lifecycle Lifecycle
}

// ConnectionEvent reports a health monitor transition. A Disconnected state
// is reported once and means the session should be torn down.
type ConnectionEvent struct {
	State ConnectionState
	Ping  uint64
}

// BotSpawnEvent fires when a state update carries more players than the one
// before it.
type BotSpawnEvent struct {
	Players  []netcomponents.EntityState
	Previous []netcomponents.EntityState
}

// GameFinishedEvent fires once when the server announces the winner.
type GameFinishedEvent struct {
	Winner netcomponents.EntityState
}

func (LifecycleEvent) clientEvent()    {}
func (ConnectionEvent) clientEvent()   {}
func (BotSpawnEvent) clientEvent()     {}
func (GameFinishedEvent) clientEvent() {}
