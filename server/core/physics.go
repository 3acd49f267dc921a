package core

import (
	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	lootEveryTicks   = 90
	maxLoots         = 3
	lootHealthValue  = 25
	botTurnTicks     = 20
	botFireChance    = 0.05
	effectDurationMs = 1500
)

// slot maps an action to its cooldown slot.
func slot(a netconfig.ActionID) int {
	switch a {
	case netconfig.ActionBasicAttack:
		return netcomponents.CooldownBasic
	case netconfig.ActionSkill1:
		return netcomponents.CooldownFirst
	case netconfig.ActionSkill2, netconfig.ActionSkill3:
		return netcomponents.CooldownSecond
	default:
		return netcomponents.CooldownUltimate
	}
}

var actionStates = map[netconfig.ActionID]netconfig.PlayerAction{
	netconfig.ActionBasicAttack: netconfig.PlayerAttacking,
	netconfig.ActionSkill1:      netconfig.PlayerExecutingSkill1,
	netconfig.ActionSkill2:      netconfig.PlayerExecutingSkill2,
	netconfig.ActionSkill3:      netconfig.PlayerExecutingSkill3,
	netconfig.ActionSkill4:      netconfig.PlayerExecutingSkill4,
}

// apply handles one client action for playerID.
func (m *Match) apply(playerID uint64, a messages.ClientAction) {
	switch a.Action {
	case netconfig.ActionAddBot:
		m.addBot()
		return
	case netconfig.ActionEnableBots:
		m.botsEnabled = true
		return
	case netconfig.ActionDisableBots:
		m.botsEnabled = false
		return
	}

	sp, ok := m.players.Get(playerID)
	if !ok || !sp.state.Alive() || m.winner != nil {
		return
	}

	switch {
	case a.Action == netconfig.ActionMove:
		sp.moveDir = normalize(a.Direction)
	case a.Action.IsSkill():
		m.fire(sp, a.Action, a.Direction)
	}
}

func normalize(v mgl64.Vec2) mgl64.Vec2 {
	if v.Len() == 0 {
		return mgl64.Vec2{}
	}
	return v.Normalize()
}

func (m *Match) fire(sp *simPlayer, action netconfig.ActionID, dir mgl64.Vec2) {
	if sp.state.HasEffect(netconfig.EffectDisarmed) {
		return
	}
	i := slot(action)
	if sp.state.Cooldowns[i] > 0 {
		return
	}
	dir = normalize(dir)
	if dir.Len() == 0 {
		dir = sp.state.Direction
	}

	sp.state.Cooldowns[i] = m.cfg.Cooldowns[i]
	sp.state.Action = actionStates[action]
	sp.state.Direction = dir

	kind := netconfig.ProjectileBullet
	if action == netconfig.ActionSkill2 {
		kind = netconfig.ProjectileDisarmingBullet
	}
	id := m.nextEntity
	m.nextEntity++
	m.projectiles.Set(id, netcomponents.EntityState{
		Key:            netcomponents.ProjectileKey(id),
		Position:       sp.state.Position,
		Direction:      dir,
		Speed:          m.cfg.ProjectileSpeed,
		Damage:         m.cfg.ProjectileDamage,
		OwnerID:        sp.state.Key.ID,
		RemainingTicks: m.cfg.ProjectileTicks,
		ProjectileType: kind,
	})
}

// step advances the simulation by one tick.
func (m *Match) step() {
	m.tick++
	if m.winner != nil {
		return
	}

	m.stepPlayers()
	m.stepProjectiles()
	m.stepZone()
	m.stepLoot()
	m.checkWinner()
}

func (m *Match) stepPlayers() {
	elapsed := uint64(m.tickMs)
	for el := m.players.Front(); el != nil; el = el.Next() {
		sp := el.Value
		st := &sp.state

		for i := range st.Cooldowns {
			st.Cooldowns[i] -= min(st.Cooldowns[i], elapsed)
		}
		effects := st.Effects[:0]
		for _, e := range st.Effects {
			if e.RemainingMs > elapsed {
				e.RemainingMs -= elapsed
				effects = append(effects, e)
			}
		}
		st.Effects = effects

		if !st.Alive() {
			continue
		}
		if sp.bot && m.botsEnabled {
			m.think(sp)
		}
		if sp.bot && !m.botsEnabled {
			sp.moveDir = mgl64.Vec2{}
		}

		st.Action = netconfig.PlayerNothing
		if sp.moveDir.Len() > 0 {
			speed := m.cfg.PlayerSpeed
			if st.HasEffect(netconfig.EffectSlowed) {
				speed /= 2
			}
			st.Position = m.clampToArena(st.Position.Add(sp.moveDir.Mul(speed)))
			st.Direction = sp.moveDir
			st.Action = netconfig.PlayerMoving
		}
	}
}

func (m *Match) clampToArena(p mgl64.Vec2) mgl64.Vec2 {
	off := p.Sub(m.center)
	if off.Len() <= m.cfg.ArenaRadius {
		return p
	}
	return m.center.Add(off.Normalize().Mul(m.cfg.ArenaRadius))
}

// think wanders and occasionally shoots at the nearest player.
func (m *Match) think(sp *simPlayer) {
	if m.tick%botTurnTicks == 0 || sp.moveDir.Len() == 0 {
		toCenter := m.center.Sub(sp.state.Position)
		wander := mgl64.Vec2{m.rng.Float64()*2 - 1, m.rng.Float64()*2 - 1}
		if toCenter.Len() > m.radius*0.7 {
			wander = wander.Add(toCenter.Normalize())
		}
		sp.moveDir = normalize(wander)
	}

	if m.rng.Float64() >= botFireChance {
		return
	}
	var target *simPlayer
	best := 0.0
	for el := m.players.Front(); el != nil; el = el.Next() {
		other := el.Value
		if other == sp || !other.state.Alive() {
			continue
		}
		d := other.state.Position.Sub(sp.state.Position).Len()
		if target == nil || d < best {
			target, best = other, d
		}
	}
	if target != nil {
		m.fire(sp, netconfig.ActionBasicAttack, target.state.Position.Sub(sp.state.Position))
	}
}

func (m *Match) stepProjectiles() {
	var gone []uint64
	for el := m.projectiles.Front(); el != nil; el = el.Next() {
		p := el.Value
		p.Position = p.Position.Add(p.Direction.Mul(p.Speed))
		p.RemainingTicks--
		if p.RemainingTicks <= 0 {
			gone = append(gone, el.Key)
			continue
		}
		if victim := m.hit(p); victim != nil {
			m.damage(victim, p.OwnerID, int64(p.Damage))
			if p.ProjectileType == netconfig.ProjectileDisarmingBullet {
				victim.state.Effects = append(victim.state.Effects, netcomponents.Effect{
					ID: netconfig.EffectDisarmed, CausedBy: p.OwnerID, RemainingMs: effectDurationMs,
				})
			}
			gone = append(gone, el.Key)
			continue
		}
		el.Value = p
	}
	for _, id := range gone {
		m.projectiles.Delete(id)
	}
}

func (m *Match) hit(p netcomponents.EntityState) *simPlayer {
	for el := m.players.Front(); el != nil; el = el.Next() {
		sp := el.Value
		if sp.state.Key.ID == p.OwnerID || !sp.state.Alive() {
			continue
		}
		if sp.state.Position.Sub(p.Position).Len() <= m.cfg.HitRadius {
			return sp
		}
	}
	return nil
}

// damage applies dmg to victim and records a kill when it dies.
func (m *Match) damage(victim *simPlayer, killerID uint64, dmg int64) {
	st := &victim.state
	st.Health -= dmg
	if st.Health > 0 {
		return
	}
	st.Health = 0
	st.Status = netconfig.StatusDead
	st.DeathCount++
	victim.moveDir = mgl64.Vec2{}
	if killer, ok := m.players.Get(killerID); ok {
		killer.state.KillCount++
	}
	m.kills = append(m.kills, netcomponents.KillEntry{KillerID: killerID, VictimID: st.Key.ID})
}

func (m *Match) stepZone() {
	m.radius = max(m.cfg.MinRadius, m.radius-m.cfg.ShrinkPerTick)
	for el := m.players.Front(); el != nil; el = el.Next() {
		sp := el.Value
		if !sp.state.Alive() {
			continue
		}
		if sp.state.Position.Sub(m.center).Len() > m.radius {
			m.damage(sp, netconfig.ZoneKillerID, m.cfg.ZoneDamage)
		}
	}
}

func (m *Match) stepLoot() {
	if m.tick%lootEveryTicks == 0 && m.loots.Len() < maxLoots {
		id := m.nextEntity
		m.nextEntity++
		m.loots.Set(id, netcomponents.EntityState{
			Key:       netcomponents.LootKey(id),
			Position:  m.spawnPoint(),
			LootType:  netconfig.LootHealth,
			LootValue: lootHealthValue,
		})
	}

	var taken []uint64
	for el := m.loots.Front(); el != nil; el = el.Next() {
		for pl := m.players.Front(); pl != nil; pl = pl.Next() {
			st := &pl.Value.state
			if !st.Alive() || st.Position.Sub(el.Value.Position).Len() > m.cfg.HitRadius {
				continue
			}
			st.Health = min(m.cfg.PlayerHealth, st.Health+int64(el.Value.LootValue))
			taken = append(taken, el.Key)
			break
		}
	}
	for _, id := range taken {
		m.loots.Delete(id)
	}
}

// checkWinner ends the match once a single player is left standing.
func (m *Match) checkWinner() {
	if m.players.Len() < 2 {
		return
	}
	var last *simPlayer
	alive := 0
	for el := m.players.Front(); el != nil; el = el.Next() {
		if el.Value.state.Alive() {
			alive++
			last = el.Value
		}
	}
	if alive == 1 {
		w := last.state
		m.winner = &w
	}
}
