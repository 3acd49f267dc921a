package systems

import (
	"image/color"

	"github.com/automoto/mirra-netsync/components"
	cfg "github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/fonts"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// LayerWorld is the single render layer the match scene draws on.
const LayerWorld ecs.LayerID = 0

const (
	playerRadius     = 8
	projectileRadius = 3
	lootSize         = 8
)

// DrawArena draws the playable zone boundary.
func DrawArena(e *ecs.ECS, screen *ebiten.Image) {
	cameraEntry, ok := components.Camera.First(e.World)
	if !ok {
		return
	}
	matchEntry, ok := components.Match.First(e.World)
	if !ok {
		return
	}
	camera := components.Camera.Get(cameraEntry)
	phase := components.Match.Get(matchEntry).Phase
	if phase.PlayableRadius <= 0 {
		return
	}

	cx, cy := worldToScreen(camera, phase.ShrinkingCenter)
	r := float32(phase.PlayableRadius / max(camera.Zoom, 1e-9))
	vector.StrokeCircle(screen, cx, cy, r, 2, cfg.HUD.ZoneColor, true)
}

// DrawEntities draws loot, then projectiles, then players on top.
func DrawEntities(e *ecs.ECS, screen *ebiten.Image) {
	cameraEntry, ok := components.Camera.First(e.World)
	if !ok {
		return
	}
	camera := components.Camera.Get(cameraEntry)
	label := fonts.Small.Get()

	for _, kind := range []netconfig.EntityKind{netconfig.KindLoot, netconfig.KindProjectile, netconfig.KindPlayer} {
		components.NetEntity.Each(e.World, func(entry *donburi.Entry) {
			ne := components.NetEntity.Get(entry)
			st := ne.State
			if st.Key.Kind != kind {
				return
			}
			x, y := worldToScreen(camera, st.Position)

			switch kind {
			case netconfig.KindLoot:
				vector.FillRect(screen, x-lootSize/2, y-lootSize/2, lootSize, lootSize, cfg.HUD.LootColor, false)
			case netconfig.KindProjectile:
				vector.DrawFilledCircle(screen, x, y, projectileRadius, cfg.HUD.ProjectileColor, true)
			case netconfig.KindPlayer:
				clr := playerColor(ne)
				vector.DrawFilledCircle(screen, x, y, playerRadius, clr, true)
				if st.Alive() {
					d := st.Direction
					if d.Len() > 0 {
						d = d.Normalize().Mul(playerRadius + 4)
					}
					vector.StrokeLine(screen, x, y, x+float32(d.X()), y+float32(d.Y()), 2, cfg.White, true)
				}
				if camera.Target == st.Key.ID {
					vector.StrokeCircle(screen, x, y, playerRadius+4, 1, cfg.HUD.TextColor, true)
				}
				name := st.Name
				if name == "" {
					name = "?"
				}
				text.Draw(screen, name, label, int(x)-len(name)*3, int(y)-playerRadius-4, clr)
			}
		})
	}
}

func playerColor(ne *components.NetEntityData) color.RGBA {
	switch {
	case !ne.State.Alive():
		return cfg.HUD.DeadColor
	case ne.Local:
		return cfg.HUD.LocalColor
	default:
		return cfg.HUD.PlayerColor
	}
}
