package messages

import (
	"time"

	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// ClientAction is sent from client to server as one binary frame per action.
// Delivery is fire-and-forget; its ordering relative to the next inbound
// snapshot is not defined.
type ClientAction struct {
	Action       netconfig.ActionID
	Direction    mgl64.Vec2 // only meaningful when HasDirection is set
	HasDirection bool
	Timestamp    int64 // Client timestamp (Unix ms)
}

// NewClientAction creates an action stamped with the current time
func NewClientAction(action netconfig.ActionID) ClientAction {
	return ClientAction{
		Action:    action,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewDirectedAction creates an action aimed along dir.
func NewDirectedAction(action netconfig.ActionID, dir mgl64.Vec2) ClientAction {
	a := NewClientAction(action)
	a.Direction = dir
	a.HasDirection = true
	return a
}
