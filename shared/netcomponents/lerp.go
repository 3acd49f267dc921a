package netcomponents

import "github.com/go-gl/mathgl/mgl64"

// LerpPosition interpolates between two positions
func LerpPosition(from, to mgl64.Vec2, t float64) mgl64.Vec2 {
	return from.Add(to.Sub(from).Mul(t))
}

func lerpUint(from, to uint64, t float64) uint64 {
	v := float64(from) + (float64(to)-float64(from))*t
	if v < 0 {
		return 0
	}
	return uint64(v + 0.5)
}

// LerpEntity interpolates continuous fields (positions, cooldown timers) and
// takes discrete state from the newer sample.
func LerpEntity(from, to EntityState, t float64) EntityState {
	out := to
	out.Position = LerpPosition(from.Position, to.Position, t)
	out.AOEPosition = LerpPosition(from.AOEPosition, to.AOEPosition, t)
	for i := range out.Cooldowns {
		out.Cooldowns[i] = lerpUint(from.Cooldowns[i], to.Cooldowns[i], t)
	}
	return out
}
