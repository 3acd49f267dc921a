package systems

import (
	"fmt"
	"image/color"
	"time"

	"github.com/automoto/mirra-netsync/components"
	cfg "github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi/ecs"
)

// UpdateHUD expires old kill feed lines.
func UpdateHUD(e *ecs.ECS) {
	matchEntry, ok := components.Match.First(e.World)
	if !ok {
		return
	}
	components.Match.Get(matchEntry).PruneFeed(time.Now())
}

// DrawHUD renders connection info, the kill feed and the match result.
func DrawHUD(e *ecs.ECS, screen *ebiten.Image) {
	matchEntry, ok := components.Match.First(e.World)
	if !ok {
		return
	}
	match := components.Match.Get(matchEntry)

	drawConnection(screen, match)
	drawKillFeed(screen, match)

	switch {
	case match.Status != "":
		drawBanner(screen, match.Status, cfg.HUD.WarningColor)
	case match.Winner != "":
		drawBanner(screen, match.Winner+" wins!", cfg.HUD.LocalColor)
	}
}

func drawConnection(screen *ebiten.Image, match *components.MatchData) {
	face := fonts.Small.Get()
	margin := int(cfg.HUD.Margin)

	clr := cfg.HUD.TextColor
	if match.Unstable {
		clr = cfg.HUD.WarningColor
	}
	bots := "on"
	if !match.BotsActive {
		bots = "off"
	}
	lines := []string{
		fmt.Sprintf("ping %d ms  %s", match.Ping, match.Connection),
		fmt.Sprintf("delay %d ms  bots %s", match.PlayoutDelayMs, bots),
	}
	if match.Unstable {
		lines = append(lines, "unstable connection")
	}

	vector.FillRect(screen, 0, 0, 200, float32(len(lines)*14+margin), cfg.BlackOverlay, false)
	for i, l := range lines {
		text.Draw(screen, l, face, margin, margin+10+i*14, clr)
	}
}

func drawKillFeed(screen *ebiten.Image, match *components.MatchData) {
	face := fonts.Small.Get()
	margin := int(cfg.HUD.Margin)
	for i, l := range match.Feed {
		x := cfg.C.Width - margin - len(l.Text)*7
		text.Draw(screen, l.Text, face, x, margin+10+i*14, cfg.HUD.TextColor)
	}
}

func drawBanner(screen *ebiten.Image, msg string, clr color.RGBA) {
	width := float32(cfg.C.Width)
	height := float32(cfg.C.Height)
	vector.FillRect(screen, 0, height/2-30, width, 50, cfg.BlackOverlay, false)
	x := int(width/2) - len(msg)*9
	text.Draw(screen, msg, fonts.Title.Get(), x, int(height/2), clr)
}
