package systems

import (
	"errors"
	"log/slog"
	"math"

	"github.com/automoto/mirra-netsync/components"
	cfg "github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/network"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/automoto/mirra-netsync/systems/factory"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/yohamta/donburi/ecs"
)

// actionOrder fixes the order actions pressed on the same frame are sent in.
var actionOrder = []netconfig.ActionID{
	netconfig.ActionBasicAttack,
	netconfig.ActionSkill1,
	netconfig.ActionSkill2,
	netconfig.ActionSkill3,
	netconfig.ActionSkill4,
	netconfig.ActionAddBot,
	netconfig.ActionEnableBots,
}

type netInputState struct {
	lastMove mgl64.Vec2
}

// NewInputSystem returns an update system that turns keyboard, mouse and
// gamepad input into client actions. Movement is only sent when the
// direction changes.
func NewInputSystem(client func() *network.Client) func(*ecs.ECS) {
	state := &netInputState{}

	return func(e *ecs.ECS) {
		c := client()
		if c == nil || c.Closed() {
			state.lastMove = mgl64.Vec2{}
			return
		}

		move := moveDirection()
		if move != state.lastMove {
			if err := c.Move(move); err == nil {
				state.lastMove = move
			} else {
				logSendError(netconfig.ActionMove, err)
			}
		}

		aim := aimDirection(e)
		for _, id := range actionOrder {
			if !bindingJustPressed(Input.Bindings[id]) {
				continue
			}
			var err error
			switch id {
			case netconfig.ActionAddBot:
				err = c.AddBot()
			case netconfig.ActionEnableBots:
				err = c.ToggleBots()
			default:
				err = c.UseSkill(id, aim)
			}
			if err != nil {
				logSendError(id, err)
			}
		}

		switch {
		case anyKeyJustPressed(Input.DelayUp):
			c.SetPlayoutDelay(c.PlayoutDelay() + Input.DelayStepMs)
		case anyKeyJustPressed(Input.DelayDown):
			c.SetPlayoutDelay(c.PlayoutDelay() - Input.DelayStepMs)
		default:
			return
		}
		cfg.NetSync.PlayoutDelayMs = c.PlayoutDelay()
	}
}

func logSendError(id netconfig.ActionID, err error) {
	if errors.Is(err, network.ErrNotConnected) {
		return
	}
	slog.Debug("action not sent", "action", id, "err", err)
}

func moveDirection() mgl64.Vec2 {
	var dir mgl64.Vec2
	if anyKeyPressed(Input.MoveLeft) {
		dir[0]--
	}
	if anyKeyPressed(Input.MoveRight) {
		dir[0]++
	}
	if anyKeyPressed(Input.MoveUp) {
		dir[1]--
	}
	if anyKeyPressed(Input.MoveDown) {
		dir[1]++
	}
	if dir != (mgl64.Vec2{}) {
		return dir
	}

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		stick := mgl64.Vec2{
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
		}
		if stick.Len() > Input.AnalogDeadzone {
			// Quantize so small stick drift does not resend every frame.
			return mgl64.Vec2{math.Round(stick[0] * 4), math.Round(stick[1] * 4)}
		}
	}
	return dir
}

// aimDirection points from the local player toward the mouse cursor, or
// along the right stick when it is pushed.
func aimDirection(e *ecs.ECS) mgl64.Vec2 {
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		stick := mgl64.Vec2{
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal),
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical),
		}
		if stick.Len() > Input.AnalogDeadzone {
			return stick
		}
	}

	cameraEntry, ok := components.Camera.First(e.World)
	if !ok {
		return mgl64.Vec2{}
	}
	matchEntry, ok := components.Match.First(e.World)
	if !ok {
		return mgl64.Vec2{}
	}
	me, ok := factory.FindPlayer(e.World, components.Match.Get(matchEntry).LocalID)
	if !ok {
		return mgl64.Vec2{}
	}
	mx, my := ebiten.CursorPosition()
	cursor := screenToWorld(components.Camera.Get(cameraEntry), float64(mx), float64(my))
	return cursor.Sub(me.Position)
}

func anyKeyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

func anyKeyJustPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

func bindingJustPressed(b InputBinding) bool {
	if anyKeyJustPressed(b.Keys) {
		return true
	}
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		for _, btn := range b.StandardGamepadButtons {
			if inpututil.IsStandardGamepadButtonJustPressed(id, btn) {
				return true
			}
		}
	}
	return false
}
