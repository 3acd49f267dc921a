package core

import (
	"math"
	"math/rand/v2"

	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
)

const firstBotID uint64 = 100_000

var characters = []string{"muflus", "h4ck", "uma", "valtimer"}

type simPlayer struct {
	state   netcomponents.EntityState
	bot     bool
	moveDir mgl64.Vec2
	peer    *peer // nil for bots and dropped players
}

// Match is one arena session. It is only touched from the game loop.
type Match struct {
	id  string
	cfg config.DevServerConfig
	rng *rand.Rand

	tickMs int64
	tick   int64

	players     *orderedmap.OrderedMap[uint64, *simPlayer]
	projectiles *orderedmap.OrderedMap[uint64, netcomponents.EntityState]
	loots       *orderedmap.OrderedMap[uint64, netcomponents.EntityState]
	nextEntity  uint64
	nextBot     uint64

	radius float64
	center mgl64.Vec2
	kills  []netcomponents.KillEntry // since the last snapshot

	botsEnabled bool
	winner      *netcomponents.EntityState
	announced   bool // GAME_FINISHED sent
}

func newMatch(id string, cfg config.DevServerConfig, tickMs int64, rng *rand.Rand) *Match {
	m := &Match{
		id:          id,
		cfg:         cfg,
		rng:         rng,
		tickMs:      tickMs,
		players:     orderedmap.NewOrderedMap[uint64, *simPlayer](),
		projectiles: orderedmap.NewOrderedMap[uint64, netcomponents.EntityState](),
		loots:       orderedmap.NewOrderedMap[uint64, netcomponents.EntityState](),
		nextEntity:  1,
		nextBot:     firstBotID,
		radius:      cfg.ArenaRadius,
		botsEnabled: true,
	}
	for range cfg.StartingBots {
		m.addBot()
	}
	return m
}

func (m *Match) spawnPoint() mgl64.Vec2 {
	angle := m.rng.Float64() * 2 * math.Pi
	dist := m.rng.Float64() * m.radius * 0.8
	return m.center.Add(mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(dist))
}

func (m *Match) newPlayer(id uint64, bot bool) *simPlayer {
	name := characters[m.players.Len()%len(characters)]
	return &simPlayer{
		bot: bot,
		state: netcomponents.EntityState{
			Key:       netcomponents.PlayerKey(id),
			Name:      name,
			Position:  m.spawnPoint(),
			Direction: mgl64.Vec2{1, 0},
			Health:    m.cfg.PlayerHealth,
			Status:    netconfig.StatusAlive,
		},
	}
}

// join adds a player or re-attaches a returning one. It reports whether the
// player is new to the match.
func (m *Match) join(id uint64, p *peer) bool {
	if sp, ok := m.players.Get(id); ok {
		sp.peer = p
		if sp.state.Status == netconfig.StatusDisconnected {
			sp.state.Status = netconfig.StatusAlive
		}
		return false
	}
	sp := m.newPlayer(id, false)
	sp.peer = p
	m.players.Set(id, sp)
	return true
}

func (m *Match) leave(id uint64, p *peer) {
	sp, ok := m.players.Get(id)
	if !ok || sp.peer != p {
		return
	}
	sp.peer = nil
	if sp.state.Status == netconfig.StatusAlive {
		sp.state.Status = netconfig.StatusDisconnected
	}
}

func (m *Match) addBot() uint64 {
	id := m.nextBot
	m.nextBot++
	m.players.Set(id, m.newPlayer(id, true))
	return id
}

// peers returns every attached connection.
func (m *Match) peers() []*peer {
	var out []*peer
	for el := m.players.Front(); el != nil; el = el.Next() {
		if el.Value.peer != nil {
			out = append(out, el.Value.peer)
		}
	}
	return out
}

func (m *Match) playerStates() []netcomponents.EntityState {
	out := make([]netcomponents.EntityState, 0, m.players.Len())
	for el := m.players.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.state)
	}
	return out
}

func (m *Match) selectedCharacters() map[uint64]string {
	out := make(map[uint64]string, m.players.Len())
	for el := m.players.Front(); el != nil; el = el.Next() {
		out[el.Key] = el.Value.state.Name
	}
	return out
}

// snapshot builds the state update for server time ts and clears the pending
// kill feed.
func (m *Match) snapshot(ts int64) *netcomponents.Snapshot {
	entities := m.playerStates()
	for el := m.projectiles.Front(); el != nil; el = el.Next() {
		entities = append(entities, el.Value)
	}
	for el := m.loots.Front(); el != nil; el = el.Next() {
		entities = append(entities, el.Value)
	}

	phase := netcomponents.Phase{
		RoundActive:     m.winner == nil,
		PlayableRadius:  m.radius,
		ShrinkingCenter: m.center,
	}
	if m.winner != nil {
		phase.WinnerID = m.winner.Key.ID
	}

	s := netcomponents.NewSnapshot(ts, phase, entities, m.kills)
	m.kills = nil
	return s
}
