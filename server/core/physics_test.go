package core

import (
	"math/rand/v2"
	"testing"

	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

func testMatch(t *testing.T) *Match {
	t.Helper()
	cfg := config.DevServer
	cfg.StartingBots = 0
	return newMatch("test", cfg, 33, rand.New(rand.NewPCG(1, 2)))
}

func placePlayer(t *testing.T, m *Match, id uint64, pos mgl64.Vec2, health int64) *simPlayer {
	t.Helper()
	m.join(id, nil)
	sp, ok := m.players.Get(id)
	if !ok {
		t.Fatalf("player %d not joined", id)
	}
	sp.state.Position = pos
	sp.state.Health = health
	return sp
}

func TestProjectileKillRecordsKill(t *testing.T) {
	m := testMatch(t)
	shooter := placePlayer(t, m, 1, mgl64.Vec2{0, 0}, 100)
	victim := placePlayer(t, m, 2, mgl64.Vec2{100, 0}, int64(m.cfg.ProjectileDamage))

	m.apply(1, messages.NewDirectedAction(netconfig.ActionBasicAttack, mgl64.Vec2{1, 0}))
	if m.projectiles.Len() != 1 {
		t.Fatalf("projectiles = %d, want 1", m.projectiles.Len())
	}
	m.step()

	if victim.state.Alive() {
		t.Fatalf("victim still alive: %+v", victim.state)
	}
	if victim.state.DeathCount != 1 || shooter.state.KillCount != 1 {
		t.Errorf("deaths=%d kills=%d, want 1 and 1", victim.state.DeathCount, shooter.state.KillCount)
	}
	if m.projectiles.Len() != 0 {
		t.Errorf("projectile survived the hit")
	}

	s := m.snapshot(1000)
	want := netcomponents.KillEntry{KillerID: 1, VictimID: 2}
	if kills := s.KillFeed(); len(kills) != 1 || kills[0] != want {
		t.Errorf("kill feed = %+v, want [%+v]", kills, want)
	}
	if kills := m.snapshot(1033).KillFeed(); len(kills) != 0 {
		t.Errorf("kill feed not cleared: %+v", kills)
	}
}

func TestLastPlayerStandingWins(t *testing.T) {
	m := testMatch(t)
	placePlayer(t, m, 1, mgl64.Vec2{0, 0}, 100)
	placePlayer(t, m, 2, mgl64.Vec2{100, 0}, 1)

	m.apply(1, messages.NewDirectedAction(netconfig.ActionBasicAttack, mgl64.Vec2{1, 0}))
	m.step()

	if m.winner == nil || m.winner.Key.ID != 1 {
		t.Fatalf("winner = %+v, want player 1", m.winner)
	}
	phase := m.snapshot(0).Phase()
	if phase.RoundActive || phase.WinnerID != 1 {
		t.Errorf("phase = %+v", phase)
	}

	// Nothing moves once the match is decided.
	m.apply(1, messages.NewDirectedAction(netconfig.ActionMove, mgl64.Vec2{1, 0}))
	before := m.playerStates()[0].Position
	m.step()
	if got := m.playerStates()[0].Position; got != before {
		t.Errorf("position changed after the match ended: %v -> %v", before, got)
	}
}

func TestZoneDamageUsesZoneKiller(t *testing.T) {
	m := testMatch(t)
	placePlayer(t, m, 1, mgl64.Vec2{0, 0}, 100)
	placePlayer(t, m, 2, mgl64.Vec2{1000, 0}, m.cfg.ZoneDamage)
	m.radius = m.cfg.MinRadius

	m.step()

	kills := m.snapshot(0).KillFeed()
	want := netcomponents.KillEntry{KillerID: netconfig.ZoneKillerID, VictimID: 2}
	if len(kills) != 1 || kills[0] != want {
		t.Fatalf("kill feed = %+v, want [%+v]", kills, want)
	}
	if m.radius != m.cfg.MinRadius {
		t.Errorf("radius = %v, want clamped to %v", m.radius, m.cfg.MinRadius)
	}
}

func TestCooldownBlocksSecondShot(t *testing.T) {
	m := testMatch(t)
	sp := placePlayer(t, m, 1, mgl64.Vec2{0, 0}, 100)

	shot := messages.NewDirectedAction(netconfig.ActionBasicAttack, mgl64.Vec2{0, 1})
	m.apply(1, shot)
	m.apply(1, shot)
	if m.projectiles.Len() != 1 {
		t.Fatalf("projectiles = %d, want 1", m.projectiles.Len())
	}

	m.step()
	want := m.cfg.Cooldowns[netcomponents.CooldownBasic] - uint64(m.tickMs)
	if got := sp.state.Cooldowns[netcomponents.CooldownBasic]; got != want {
		t.Errorf("cooldown = %d, want %d", got, want)
	}
}

func TestDisarmedPlayerCannotFire(t *testing.T) {
	m := testMatch(t)
	sp := placePlayer(t, m, 1, mgl64.Vec2{0, 0}, 100)
	sp.state.Effects = []netcomponents.Effect{{ID: netconfig.EffectDisarmed, RemainingMs: 1000}}

	m.apply(1, messages.NewDirectedAction(netconfig.ActionSkill1, mgl64.Vec2{1, 0}))
	if m.projectiles.Len() != 0 {
		t.Errorf("disarmed player fired")
	}
}

func TestMoveIsNormalized(t *testing.T) {
	m := testMatch(t)
	sp := placePlayer(t, m, 1, mgl64.Vec2{0, 0}, 100)

	m.apply(1, messages.NewDirectedAction(netconfig.ActionMove, mgl64.Vec2{3, 4}))
	m.step()

	want := mgl64.Vec2{0.6, 0.8}.Mul(m.cfg.PlayerSpeed)
	if !sp.state.Position.ApproxEqual(want) {
		t.Errorf("position = %v, want %v", sp.state.Position, want)
	}
	if sp.state.Action != netconfig.PlayerMoving {
		t.Errorf("action = %v, want moving", sp.state.Action)
	}
}

func TestBotActions(t *testing.T) {
	m := testMatch(t)
	placePlayer(t, m, 1, mgl64.Vec2{0, 0}, 100)

	m.apply(1, messages.NewClientAction(netconfig.ActionAddBot))
	if m.players.Len() != 2 {
		t.Fatalf("players = %d, want 2", m.players.Len())
	}
	bot, ok := m.players.Get(firstBotID)
	if !ok || !bot.bot {
		t.Fatalf("bot %d missing", firstBotID)
	}

	m.apply(1, messages.NewClientAction(netconfig.ActionDisableBots))
	bot.moveDir = mgl64.Vec2{1, 0}
	pos := bot.state.Position
	m.step()
	if bot.state.Position != pos {
		t.Errorf("disabled bot moved")
	}

	m.apply(1, messages.NewClientAction(netconfig.ActionEnableBots))
	if !m.botsEnabled {
		t.Errorf("bots not re-enabled")
	}
}

func TestLeaveAndRejoin(t *testing.T) {
	m := testMatch(t)
	p := &peer{}
	if !m.join(1, p) {
		t.Fatalf("first join not reported as new")
	}
	if got := m.peers(); len(got) != 1 || got[0] != p {
		t.Fatalf("peers = %v", got)
	}

	m.leave(1, &peer{})
	if len(m.peers()) != 1 {
		t.Fatalf("leave from a stale peer detached the player")
	}

	m.leave(1, p)
	sp, _ := m.players.Get(1)
	if len(m.peers()) != 0 || sp.state.Status != netconfig.StatusDisconnected {
		t.Fatalf("after leave: peers=%d status=%v", len(m.peers()), sp.state.Status)
	}

	if m.join(1, p) {
		t.Errorf("rejoin reported as new")
	}
	if sp.state.Status != netconfig.StatusAlive {
		t.Errorf("status after rejoin = %v", sp.state.Status)
	}
}
