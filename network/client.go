package network

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/automoto/mirra-netsync/shared/protocol"
	"github.com/go-gl/mathgl/mgl64"
)

// transport is the part of *Session the client drives.
type transport interface {
	Connect()
	DrainFrames() [][]byte
	DrainLifecycle() []Lifecycle
	Send(messages.ClientAction) error
	Close() error
}

// ClientOptions configures one match connection.
type ClientOptions struct {
	Session SessionOptions
	NetSync config.NetSyncConfig
	Logger  *slog.Logger
}

// Client owns everything needed to follow one match: the session, the
// snapshot buffer, the interpolator, the health monitor and the kill feed.
// It is driven from the host's frame loop and is not safe for concurrent use;
// only the session's own goroutines run in the background.
type Client struct {
	session  transport
	buffer   *SnapshotBuffer
	interp   *Interpolator
	monitor  *HealthMonitor
	killFeed *KillFeed
	logger   *slog.Logger

	playerID uint64
	closed   bool
	events   []Event

	players      []netcomponents.EntityState
	alivePlayers []netcomponents.EntityState
	phase        netcomponents.Phase
	winner       *netcomponents.EntityState
	selected     map[uint64]string
	allSelected  bool
	botsActive   bool

	decodeErrors int
}

// NewClient builds a client and its session. Call Connect to start dialing.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = opts.Logger
	}
	if opts.Session.QueueSize == 0 {
		opts.Session.QueueSize = opts.NetSync.InboundQueueSize
	}
	session, err := NewSession(opts.Session)
	if err != nil {
		return nil, err
	}
	return newClient(session, opts.Session.PlayerID, opts.NetSync, opts.Logger), nil
}

func newClient(t transport, playerID uint64, cfg config.NetSyncConfig, logger *slog.Logger) *Client {
	buffer := NewSnapshotBuffer(cfg.Buffer.Capacity, cfg.Buffer.RetentionMs)
	return &Client{
		session:    t,
		buffer:     buffer,
		interp:     NewInterpolator(buffer, cfg.PlayoutDelayMs),
		monitor:    NewHealthMonitor(cfg.Health, logger),
		killFeed:   NewKillFeed(playerID),
		logger:     logger.With("component", "client"),
		playerID:   playerID,
		selected:   map[uint64]string{},
		botsActive: true,
	}
}

// Connect starts dialing in the background.
func (c *Client) Connect() {
	c.session.Connect()
}

// Tick runs the receive step for one host frame at local time now (ms): it
// decodes every frame queued since the last call, feeds the buffer, monitor
// and kill feed, then applies the monitor's timers.
func (c *Client) Tick(now int64) {
	if c.closed {
		return
	}

	for _, l := range c.session.DrainLifecycle() {
		c.events = append(c.events, LifecycleEvent{Lifecycle: l})
	}

	for _, frame := range c.session.DrainFrames() {
		c.handleFrame(frame, now)
	}

	if c.monitor.Check(now) {
		c.events = append(c.events, ConnectionEvent{State: c.monitor.State(), Ping: c.monitor.Ping()})
	}
}

func (c *Client) handleFrame(frame []byte, now int64) {
	ev, err := protocol.Decode(frame)
	if err != nil {
		c.decodeErrors++
		c.logger.Warn("dropping frame", "bytes", len(frame), "err", err)
		return
	}

	switch ev := ev.(type) {
	case messages.StateUpdate:
		c.applyState(ev.Snapshot, now)
	case messages.PingUpdate:
		c.monitor.SetPing(ev.LatencyMs)
	case messages.GameFinished:
		winner := ev.Winner
		first := c.winner == nil
		c.winner = &winner
		c.players = ev.Players
		if first {
			c.events = append(c.events, GameFinishedEvent{Winner: winner})
		}
	case messages.InitialPositions:
		c.players = ev.Players
	case messages.SelectedCharacterUpdate:
		c.selected = ev.Selected
	case messages.FinishCharacterSelection:
		c.selected = ev.Selected
		c.allSelected = true
		c.players = ev.Players
	default:
		c.logger.Warn("unhandled event", "type", ev.Type())
	}
}

func (c *Client) applyState(s *netcomponents.Snapshot, now int64) {
	if !c.buffer.Push(s) {
		c.logger.Debug("dropping stale snapshot", "timestamp", s.Timestamp())
		return
	}
	if c.monitor.Observe(s.Timestamp(), now) {
		c.events = append(c.events, ConnectionEvent{State: c.monitor.State(), Ping: c.monitor.Ping()})
	}

	players := make([]netcomponents.EntityState, 0, s.Len())
	alive := make([]netcomponents.EntityState, 0, s.Len())
	s.Each(func(e netcomponents.EntityState) bool {
		if e.Key.Kind != netconfig.KindPlayer {
			return true
		}
		players = append(players, e)
		if e.Health > 0 {
			alive = append(alive, e)
		}
		return true
	})

	if c.players != nil && len(c.players) < len(players) {
		c.events = append(c.events, BotSpawnEvent{Players: players, Previous: c.players})
	}
	c.players = players
	c.alivePlayers = alive
	c.phase = s.Phase()

	kills := s.KillFeed()
	c.killFeed.Put(kills)
	if len(kills) == 0 {
		tracked, ok := s.Entity(netcomponents.PlayerKey(c.killFeed.PlayerToTrack()))
		c.killFeed.Follow(tracked, ok)
	}
}

// Sample returns the interpolated world state to render at local time now.
func (c *Client) Sample(now int64) (netcomponents.WorldState, bool) {
	return c.interp.Sample(now)
}

// SetPlayoutDelay changes how far behind the newest snapshot Sample renders.
func (c *Client) SetPlayoutDelay(ms int64) {
	c.interp.PlayoutDelayMs = max(ms, 0)
}

func (c *Client) PlayoutDelay() int64 { return c.interp.PlayoutDelayMs }

// DrainEvents returns the events collected by Tick since the last call.
func (c *Client) DrainEvents() []Event {
	out := c.events
	c.events = nil
	return out
}

// SendAction sends a client action, fire-and-forget.
func (c *Client) SendAction(a messages.ClientAction) error {
	if c.closed {
		return ErrSessionClosed
	}
	return c.session.Send(a)
}

// UseSkill sends a basic attack or skill toward dir.
func (c *Client) UseSkill(action netconfig.ActionID, dir mgl64.Vec2) error {
	return c.SendAction(messages.NewDirectedAction(action, dir))
}

// Move asks the server to move the local player along dir.
func (c *Client) Move(dir mgl64.Vec2) error {
	return c.SendAction(messages.NewDirectedAction(netconfig.ActionMove, dir))
}

// AddBot asks the server to spawn a bot.
func (c *Client) AddBot() error {
	return c.SendAction(messages.NewClientAction(netconfig.ActionAddBot))
}

// ToggleBots flips bot activity on the server. Bots start active.
func (c *Client) ToggleBots() error {
	action := netconfig.ActionDisableBots
	if !c.botsActive {
		action = netconfig.ActionEnableBots
	}
	if err := c.SendAction(messages.NewClientAction(action)); err != nil {
		return err
	}
	c.botsActive = !c.botsActive
	return nil
}

// Close tears the session down. No frame is dispatched after Close returns.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.session.Close()
}

func (c *Client) Closed() bool { return c.closed }

func (c *Client) PlayerID() uint64 { return c.playerID }

func (c *Client) Buffer() *SnapshotBuffer { return c.buffer }

func (c *Client) Monitor() *HealthMonitor { return c.monitor }

func (c *Client) KillFeed() *KillFeed { return c.killFeed }

func (c *Client) Ping() uint64 { return c.monitor.Ping() }

func (c *Client) ConnectionState() ConnectionState { return c.monitor.State() }

// Players returns the latest known player list.
func (c *Client) Players() []netcomponents.EntityState {
	return slices.Clone(c.players)
}

// AlivePlayers returns players with health above zero in the last state update.
func (c *Client) AlivePlayers() []netcomponents.EntityState {
	return slices.Clone(c.alivePlayers)
}

// Phase returns the phase metadata of the newest state update.
func (c *Client) Phase() netcomponents.Phase { return c.phase }

// Winner returns the winner announced by GAME_FINISHED.
func (c *Client) Winner() (netcomponents.EntityState, bool) {
	if c.winner == nil {
		return netcomponents.EntityState{}, false
	}
	return *c.winner, true
}

func (c *Client) GameHasEnded() bool {
	return c.winner != nil
}

func (c *Client) PlayerIsWinner(playerID uint64) bool {
	return c.winner != nil && c.winner.Key.ID == playerID
}

// SelectedCharacters maps player id to character name.
func (c *Client) SelectedCharacters() map[uint64]string {
	return maps.Clone(c.selected)
}

// AllSelected reports whether character selection has finished.
func (c *Client) AllSelected() bool { return c.allSelected }

func (c *Client) BotsActive() bool { return c.botsActive }

// DecodeErrors counts frames dropped as malformed.
func (c *Client) DecodeErrors() int { return c.decodeErrors }
