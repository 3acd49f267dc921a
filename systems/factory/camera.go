package factory

import (
	"github.com/automoto/mirra-netsync/components"
	"github.com/yohamta/donburi"
)

func CreateCamera(w donburi.World, target uint64, zoom float64) *donburi.Entry {
	entry := w.Entry(w.Create(components.Camera))
	components.Camera.SetValue(entry, components.CameraData{
		Zoom:   zoom,
		Target: target,
	})
	return entry
}

// CreateMatch creates the singleton the HUD reads.
func CreateMatch(w donburi.World, localID uint64) *donburi.Entry {
	entry := w.Entry(w.Create(components.Match))
	components.Match.SetValue(entry, components.MatchData{
		LocalID:    localID,
		BotsActive: true,
	})
	return entry
}
