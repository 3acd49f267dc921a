package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
)

type CameraData struct {
	Position mgl64.Vec2
	Zoom     float64 // world units per screen pixel

	Target uint64 // player id being followed
	from   mgl64.Vec2
	pan    *gween.Tween // 0..1 blend from `from` to the target, nil once settled
}

var Camera = donburi.NewComponentType[CameraData]()

// Retarget starts a pan to a new player over duration seconds. Retargeting to
// the current target is a no-op.
func (c *CameraData) Retarget(id uint64, duration float32) {
	if id == c.Target {
		return
	}
	c.Target = id
	c.from = c.Position
	c.pan = gween.New(0, 1, duration, ease.OutQuad)
}

// Follow moves the camera toward target, advancing any running pan by dt
// seconds.
func (c *CameraData) Follow(target mgl64.Vec2, dt float32) {
	if c.pan == nil {
		c.Position = target
		return
	}
	f, done := c.pan.Update(dt)
	if done {
		c.pan = nil
		c.Position = target
		return
	}
	c.Position = c.from.Add(target.Sub(c.from).Mul(float64(f)))
}

// Panning reports whether a retarget pan is still running.
func (c *CameraData) Panning() bool {
	return c.pan != nil
}
