package main

import (
	"flag"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/fonts"
	"github.com/automoto/mirra-netsync/network"
	"github.com/automoto/mirra-netsync/scenes"
	"github.com/getsentry/sentry-go"
	"github.com/hajimehoshi/ebiten/v2"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

type Game struct {
	bounds image.Rectangle
	scene  Scene
}

func NewGame(scene Scene) *Game {
	return &Game{
		bounds: image.Rectangle{},
		scene:  scene,
	}
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	g.bounds = image.Rect(0, 0, config.C.Width, config.C.Height)
	return config.C.Width, config.C.Height
}

func main() {
	envFile := flag.String("env", ".env", "Environment file with NETSYNC_* overrides")
	addr := flag.String("addr", "", "Server address (overrides saved settings)")
	session := flag.String("session", "dev", "Match session id")
	player := flag.Uint64("player", 1, "Local player id")
	hash := flag.String("hash", "", "Client build hash sent on connect")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := config.LoadEnv(*envFile); err != nil {
		slog.Error("bad environment", "err", err)
		os.Exit(1)
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			slog.Warn("sentry disabled", "err", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Saved settings win over the environment, flags win over both.
	store, err := config.OpenStore("mirra-netsync")
	if err != nil {
		slog.Warn("could not open settings storage", "err", err)
	} else if saved, err := config.LoadSettings(store); err != nil {
		slog.Warn("could not load settings", "err", err)
	} else {
		config.ApplySavedSettings(saved)
	}
	if *addr != "" {
		config.NetSync.ServerAddr = *addr
	}

	if err := fonts.LoadDefaults(config.HUD.FontSize); err != nil {
		slog.Error("font load failed", "err", err)
		os.Exit(1)
	}

	scene := scenes.NewMatchScene(scenes.MatchOptions{
		Session: network.SessionOptions{
			Addr:       config.NetSync.ServerAddr,
			SessionID:  *session,
			PlayerID:   *player,
			ClientHash: *hash,
		},
		NetSync: config.NetSync,
	})

	ebiten.SetWindowSize(config.C.Width, config.C.Height)
	ebiten.SetWindowTitle(config.C.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeOnlyFullscreenEnabled)

	runErr := ebiten.RunGame(NewGame(scene))
	scene.Close()

	if store != nil {
		if err := config.SaveSettings(store); err != nil {
			slog.Warn("could not save settings", "err", err)
		}
	}
	if runErr != nil {
		slog.Error("game exited", "err", runErr)
		os.Exit(1)
	}
}
