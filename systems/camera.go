package systems

import (
	"github.com/automoto/mirra-netsync/components"
	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/systems/factory"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/yohamta/donburi/ecs"
)

// NewCameraSystem returns an update system that follows the spectator target.
// A change of target pans over config.Camera.RetargetDuration.
func NewCameraSystem(target func() uint64) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		cameraEntry, ok := components.Camera.First(e.World)
		if !ok {
			return
		}
		camera := components.Camera.Get(cameraEntry)
		camera.Retarget(target(), config.Camera.RetargetDuration)

		st, ok := factory.FindPlayer(e.World, camera.Target)
		if !ok {
			return
		}
		camera.Follow(st.Position, float32(1/float64(ebiten.TPS())))
	}
}

func worldToScreen(c *components.CameraData, p mgl64.Vec2) (float32, float32) {
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	off := p.Sub(c.Position).Mul(1 / zoom)
	return float32(off.X() + float64(config.C.Width)/2), float32(off.Y() + float64(config.C.Height)/2)
}

func screenToWorld(c *components.CameraData, x, y float64) mgl64.Vec2 {
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	off := mgl64.Vec2{x - float64(config.C.Width)/2, y - float64(config.C.Height)/2}
	return c.Position.Add(off.Mul(zoom))
}
