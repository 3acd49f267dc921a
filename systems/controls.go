package systems

import (
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/hajimehoshi/ebiten/v2"
)

// InputBinding represents a single key or button binding for an action
type InputBinding struct {
	Keys                   []ebiten.Key
	StandardGamepadButtons []ebiten.StandardGamepadButton
}

// InputConfig holds all input mappings
type InputConfig struct {
	Bindings map[netconfig.ActionID]InputBinding
	// Deadzone for analog stick input (0.0 to 1.0)
	AnalogDeadzone float64
	// Keys that move the local player, read as a direction vector
	MoveUp, MoveDown, MoveLeft, MoveRight []ebiten.Key
	// Playout delay tuning, saved on exit
	DelayUp, DelayDown []ebiten.Key
	DelayStepMs        int64
}

// Input is the global input configuration
var Input InputConfig

func init() {
	Input = InputConfig{
		AnalogDeadzone: 0.25,
		MoveUp:         []ebiten.Key{ebiten.KeyW, ebiten.KeyUp},
		MoveDown:       []ebiten.Key{ebiten.KeyS, ebiten.KeyDown},
		MoveLeft:       []ebiten.Key{ebiten.KeyA, ebiten.KeyLeft},
		MoveRight:      []ebiten.Key{ebiten.KeyD, ebiten.KeyRight},
		DelayUp:        []ebiten.Key{ebiten.KeyEqual, ebiten.KeyNumpadAdd},
		DelayDown:      []ebiten.Key{ebiten.KeyMinus, ebiten.KeyNumpadSubtract},
		DelayStepMs:    10,
		Bindings: map[netconfig.ActionID]InputBinding{
			netconfig.ActionBasicAttack: {
				Keys: []ebiten.Key{ebiten.KeySpace},
				// A / Cross button
				StandardGamepadButtons: []ebiten.StandardGamepadButton{
					ebiten.StandardGamepadButtonRightBottom,
				},
			},
			netconfig.ActionSkill1: {
				Keys: []ebiten.Key{ebiten.Key1},
				StandardGamepadButtons: []ebiten.StandardGamepadButton{
					ebiten.StandardGamepadButtonRightLeft,
				},
			},
			netconfig.ActionSkill2: {
				Keys: []ebiten.Key{ebiten.Key2},
				StandardGamepadButtons: []ebiten.StandardGamepadButton{
					ebiten.StandardGamepadButtonRightTop,
				},
			},
			netconfig.ActionSkill3: {
				Keys: []ebiten.Key{ebiten.Key3},
				StandardGamepadButtons: []ebiten.StandardGamepadButton{
					ebiten.StandardGamepadButtonRightRight,
				},
			},
			netconfig.ActionSkill4: {
				Keys: []ebiten.Key{ebiten.Key4},
				// Right bumper
				StandardGamepadButtons: []ebiten.StandardGamepadButton{
					ebiten.StandardGamepadButtonFrontTopRight,
				},
			},
			netconfig.ActionAddBot: {
				Keys: []ebiten.Key{ebiten.KeyB},
			},
			// Toggled: sent as enable or disable depending on current state
			netconfig.ActionEnableBots: {
				Keys: []ebiten.Key{ebiten.KeyT},
			},
		},
	}
}
