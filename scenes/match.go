package scenes

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/automoto/mirra-netsync/components"
	cfg "github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/network"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/automoto/mirra-netsync/systems"
	"github.com/automoto/mirra-netsync/systems/factory"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// MatchOptions configures the match scene's connection.
type MatchOptions struct {
	Session network.SessionOptions
	NetSync cfg.NetSyncConfig
	Logger  *slog.Logger
}

// MatchScene follows one match: it drives the network client every frame,
// mirrors the sampled world into the ECS world and reconnects with backoff
// when the transport asks for it.
type MatchScene struct {
	ecs    *ecs.ECS
	opts   MatchOptions
	client *network.Client
	logger *slog.Logger
	once   sync.Once

	backoff     time.Duration
	reconnectAt time.Time
	lost        bool // terminal until the player retries
}

func NewMatchScene(opts MatchOptions) *MatchScene {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	// One client id across reconnects.
	if opts.Session.ClientID == "" {
		opts.Session.ClientID = uuid.NewString()
	}
	return &MatchScene{
		opts:   opts,
		logger: opts.Logger.With("component", "match_scene"),
	}
}

func (ms *MatchScene) Update() {
	ms.once.Do(ms.configure)
	now := time.Now()

	if ms.lost && inpututil.IsKeyJustPressed(ebiten.KeyR) {
		ms.lost = false
		ms.backoff = 0
		ms.reconnectAt = now
	}
	if ms.client == nil && !ms.lost && !now.Before(ms.reconnectAt) {
		ms.connect()
	}

	if c := ms.client; c != nil {
		c.Tick(now.UnixMilli())
		ms.handleEvents(c, now)
	}
	if c := ms.client; c != nil {
		if ws, ok := c.Sample(now.UnixMilli()); ok {
			factory.SyncEntities(ms.ecs.World, ws, ms.opts.Session.PlayerID)
		}
		ms.updateMatch(c, now)
	}

	ms.ecs.Update()
}

func (ms *MatchScene) Draw(screen *ebiten.Image) {
	// Always clear screen to prevent white flashes from OS window background
	screen.Fill(cfg.HUD.BackgroundColor)

	if ms.ecs == nil {
		return
	}
	ms.ecs.Draw(screen)
}

// Close tears down the current connection.
func (ms *MatchScene) Close() {
	if ms.client != nil {
		ms.client.Close()
		ms.client = nil
	}
}

func (ms *MatchScene) configure() {
	ms.ecs = ecs.NewECS(donburi.NewWorld())

	factory.CreateCamera(ms.ecs.World, ms.opts.Session.PlayerID, cfg.Camera.Zoom)
	factory.CreateMatch(ms.ecs.World, ms.opts.Session.PlayerID)

	ms.ecs.AddSystem(systems.NewInputSystem(func() *network.Client { return ms.client }))
	ms.ecs.AddSystem(systems.NewCameraSystem(ms.spectatorTarget))
	ms.ecs.AddSystem(systems.UpdateHUD)

	ms.ecs.AddRenderer(systems.LayerWorld, systems.DrawArena)
	ms.ecs.AddRenderer(systems.LayerWorld, systems.DrawEntities)
	ms.ecs.AddRenderer(systems.LayerWorld, systems.DrawHUD)
}

func (ms *MatchScene) spectatorTarget() uint64 {
	if ms.client == nil {
		return ms.opts.Session.PlayerID
	}
	return ms.client.KillFeed().PlayerToTrack()
}

func (ms *MatchScene) connect() {
	c, err := network.NewClient(network.ClientOptions{
		Session: ms.opts.Session,
		NetSync: ms.opts.NetSync,
		Logger:  ms.opts.Logger,
	})
	if err != nil {
		ms.logger.Error("cannot create client", "err", err)
		ms.lose(fmt.Sprintf("bad connection settings: %v", err))
		return
	}
	ms.logger.Info("connecting", "url", ms.opts.Session.Addr, "player", ms.opts.Session.PlayerID)
	c.SetPlayoutDelay(cfg.NetSync.PlayoutDelayMs)
	c.Connect()
	ms.client = c
	ms.match().Status = "connecting..."
}

func (ms *MatchScene) handleEvents(c *network.Client, now time.Time) {
	match := ms.match()
	for _, ev := range c.DrainEvents() {
		switch ev := ev.(type) {
		case network.LifecycleEvent:
			switch ev.Lifecycle {
			case network.LifecycleConnected:
				ms.backoff = 0
				match.Status = ""
			case network.LifecycleReconnectRequired:
				ms.scheduleReconnect(now)
				return
			case network.LifecycleDisconnected:
				ms.lose("disconnected by server, press R to reconnect")
				return
			}
		case network.ConnectionEvent:
			if ev.State == network.ConnectionDisconnected {
				ms.lose("lost connection, press R to reconnect")
				return
			}
		case network.GameFinishedEvent:
			match.Winner = displayName(ev.Winner)
		case network.BotSpawnEvent:
			ms.logger.Debug("players joined", "from", len(ev.Previous), "to", len(ev.Players))
		}
	}
}

func (ms *MatchScene) scheduleReconnect(now time.Time) {
	ms.Close()
	ns := ms.opts.NetSync
	if ms.backoff == 0 {
		ms.backoff = ns.ReconnectBackoff
	} else {
		ms.backoff = min(ms.backoff*2, ns.ReconnectBackoffMax)
	}
	ms.reconnectAt = now.Add(ms.backoff)
	ms.match().Status = fmt.Sprintf("reconnecting in %s...", ms.backoff.Round(100*time.Millisecond))
	ms.logger.Warn("reconnect scheduled", "backoff", ms.backoff)
}

func (ms *MatchScene) lose(status string) {
	ms.Close()
	ms.lost = true
	ms.match().Status = status
	ms.logger.Warn("connection lost", "status", status)
}

func (ms *MatchScene) updateMatch(c *network.Client, now time.Time) {
	match := ms.match()
	match.Phase = c.Phase()
	match.Ping = c.Ping()
	match.Connection = c.ConnectionState().String()
	match.Unstable = c.Monitor().Unstable()
	match.BotsActive = c.BotsActive()
	match.PlayoutDelayMs = c.PlayoutDelay()
	if w, ok := c.Winner(); ok {
		match.Winner = displayName(w)
	} else {
		match.Winner = ""
	}

	names := make(map[uint64]string)
	for _, p := range c.Players() {
		names[p.Key.ID] = displayName(p)
	}
	for _, k := range c.KillFeed().Drain() {
		match.PushFeed(killLine(k, names), now.Add(cfg.HUD.KillFeedTTL), cfg.HUD.KillFeedEntries)
	}
}

func (ms *MatchScene) match() *components.MatchData {
	entry, _ := components.Match.First(ms.ecs.World)
	return components.Match.Get(entry)
}

func killLine(k netcomponents.KillEntry, names map[uint64]string) string {
	victim := nameOr(names, k.VictimID)
	if k.ByZone() {
		return victim + " fell to the zone"
	}
	return nameOr(names, k.KillerID) + " killed " + victim
}

func nameOr(names map[uint64]string, id uint64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

func displayName(e netcomponents.EntityState) string {
	if e.Name == "" {
		return fmt.Sprintf("#%d", e.Key.ID)
	}
	return fmt.Sprintf("%s #%d", e.Name, e.Key.ID)
}
