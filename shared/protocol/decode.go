package protocol

import (
	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"google.golang.org/protobuf/encoding/protowire"
)

// gameEvent is the flat decoded form of a GameEvent before it is narrowed to
// the variant its type tag names.
type gameEvent struct {
	typ          messages.EventType
	players      []netcomponents.EntityState
	projectiles  []netcomponents.EntityState
	loots        []netcomponents.EntityState
	latency      uint64
	winner       *netcomponents.EntityState
	selected     map[uint64]string
	timestamp    int64
	hasTimestamp bool
	kills        []netcomponents.KillEntry
	radius       float64
	center       mgl64.Vec2
}

// Decode parses one inbound frame. Every failure wraps ErrDecode; the caller
// drops the frame and carries on.
func Decode(b []byte) (messages.Event, error) {
	if len(b) == 0 {
		return nil, decodeErr("empty frame")
	}

	var ev gameEvent
	if err := walk(b, ev.field); err != nil {
		return nil, err
	}

	switch ev.typ {
	case messages.EventStateUpdate:
		if !ev.hasTimestamp {
			return nil, decodeErr("state update without server timestamp")
		}
		return messages.StateUpdate{Snapshot: ev.snapshot()}, nil
	case messages.EventPingUpdate:
		return messages.PingUpdate{LatencyMs: ev.latency}, nil
	case messages.EventGameFinished:
		if ev.winner == nil {
			return nil, decodeErr("game finished without winner")
		}
		return messages.GameFinished{Winner: *ev.winner, Players: ev.players}, nil
	case messages.EventInitialPositions:
		return messages.InitialPositions{Players: ev.players}, nil
	case messages.EventSelectedCharacterUpdate:
		return messages.SelectedCharacterUpdate{Selected: ev.selectedMap()}, nil
	case messages.EventFinishCharacterSelection:
		return messages.FinishCharacterSelection{Selected: ev.selectedMap(), Players: ev.players}, nil
	default:
		return nil, decodeErr("unknown event type %d", ev.typ)
	}
}

func (ev *gameEvent) snapshot() *netcomponents.Snapshot {
	entities := make([]netcomponents.EntityState, 0, len(ev.players)+len(ev.projectiles)+len(ev.loots))
	entities = append(entities, ev.players...)
	entities = append(entities, ev.projectiles...)
	entities = append(entities, ev.loots...)

	kills := ev.kills
	for i := range kills {
		kills[i].Timestamp = ev.timestamp
	}

	phase := netcomponents.Phase{
		RoundActive:     ev.winner == nil,
		PlayableRadius:  ev.radius,
		ShrinkingCenter: ev.center,
	}
	if ev.winner != nil {
		phase.WinnerID = ev.winner.Key.ID
	}
	return netcomponents.NewSnapshot(ev.timestamp, phase, entities, kills)
}

func (ev *gameEvent) selectedMap() map[uint64]string {
	if ev.selected == nil {
		return map[uint64]string{}
	}
	return ev.selected
}

func (ev *gameEvent) field(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case fieldEventType:
		v, n, err := consumeVarint(num, typ, b)
		if err != nil {
			return 0, err
		}
		if v > 0xff {
			return 0, decodeErr("event type %d out of range", v)
		}
		ev.typ = messages.EventType(v)
		return n, nil
	case fieldEventPlayers:
		raw, n, err := consumeBytes(num, typ, b)
		if err != nil {
			return 0, err
		}
		p, err := decodePlayer(raw)
		if err != nil {
			return 0, err
		}
		ev.players = append(ev.players, p)
		return n, nil
	case fieldEventLatency:
		v, n, err := consumeVarint(num, typ, b)
		ev.latency = v
		return n, err
	case fieldEventProjectiles:
		raw, n, err := consumeBytes(num, typ, b)
		if err != nil {
			return 0, err
		}
		p, err := decodeProjectile(raw)
		if err != nil {
			return 0, err
		}
		ev.projectiles = append(ev.projectiles, p)
		return n, nil
	case fieldEventWinner:
		raw, n, err := consumeBytes(num, typ, b)
		if err != nil {
			return 0, err
		}
		p, err := decodePlayer(raw)
		if err != nil {
			return 0, err
		}
		ev.winner = &p
		return n, nil
	case fieldEventSelected:
		raw, n, err := consumeBytes(num, typ, b)
		if err != nil {
			return 0, err
		}
		var key uint64
		var value string
		err = walk(raw, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			switch num {
			case fieldSelectedMapKey:
				v, m, err := consumeVarint(num, typ, b)
				key = v
				return m, err
			case fieldSelectedMapValue:
				v, m, err := consumeBytes(num, typ, b)
				value = string(v)
				return m, err
			}
			return skip(num, typ, b)
		})
		if err != nil {
			return 0, err
		}
		if ev.selected == nil {
			ev.selected = make(map[uint64]string)
		}
		ev.selected[key] = value
		return n, nil
	case fieldEventTimestamp:
		v, n, err := consumeVarint(num, typ, b)
		ev.timestamp = int64(v)
		ev.hasTimestamp = true
		return n, err
	case fieldEventKillfeed:
		raw, n, err := consumeBytes(num, typ, b)
		if err != nil {
			return 0, err
		}
		var k netcomponents.KillEntry
		err = walk(raw, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			switch num {
			case fieldKillKiller:
				v, m, err := consumeVarint(num, typ, b)
				k.KillerID = v
				return m, err
			case fieldKillVictim:
				v, m, err := consumeVarint(num, typ, b)
				k.VictimID = v
				return m, err
			}
			return skip(num, typ, b)
		})
		if err != nil {
			return 0, err
		}
		ev.kills = append(ev.kills, k)
		return n, nil
	case fieldEventRadius:
		v, n, err := consumeDouble(num, typ, b)
		ev.radius = v
		return n, err
	case fieldEventShrinkCenter:
		pos, n, err := consumePosition(num, typ, b)
		ev.center = pos
		return n, err
	case fieldEventLoots:
		raw, n, err := consumeBytes(num, typ, b)
		if err != nil {
			return 0, err
		}
		l, err := decodeLoot(raw)
		if err != nil {
			return 0, err
		}
		ev.loots = append(ev.loots, l)
		return n, nil
	}
	return skip(num, typ, b)
}

func decodePlayer(b []byte) (netcomponents.EntityState, error) {
	p := netcomponents.EntityState{Key: netcomponents.PlayerKey(0)}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldPlayerID:
			v, n, err := consumeVarint(num, typ, b)
			p.Key.ID = v
			return n, err
		case num == fieldPlayerHealth:
			v, n, err := consumeSint(num, typ, b)
			p.Health = v
			return n, err
		case num == fieldPlayerPosition:
			v, n, err := consumePosition(num, typ, b)
			p.Position = v
			return n, err
		case num == fieldPlayerStatus:
			v, n, err := consumeVarint(num, typ, b)
			p.Status = netconfig.PlayerStatus(v)
			return n, err
		case num == fieldPlayerAction:
			v, n, err := consumeVarint(num, typ, b)
			p.Action = netconfig.PlayerAction(v)
			return n, err
		case num == fieldPlayerAOEPosition:
			v, n, err := consumePosition(num, typ, b)
			p.AOEPosition = v
			return n, err
		case num == fieldPlayerKillCount:
			v, n, err := consumeVarint(num, typ, b)
			p.KillCount = v
			return n, err
		case num == fieldPlayerDeathCount:
			v, n, err := consumeVarint(num, typ, b)
			p.DeathCount = v
			return n, err
		case num >= fieldPlayerCooldown0 && num < fieldPlayerCooldown0+protowire.Number(len(p.Cooldowns)):
			v, n, err := consumeVarint(num, typ, b)
			p.Cooldowns[num-fieldPlayerCooldown0] = v
			return n, err
		case num == fieldPlayerName:
			v, n, err := consumeBytes(num, typ, b)
			p.Name = string(v)
			return n, err
		case num == fieldPlayerEffects:
			raw, n, err := consumeBytes(num, typ, b)
			if err != nil {
				return 0, err
			}
			eff, err := decodeEffect(raw)
			if err != nil {
				return 0, err
			}
			p.Effects = append(p.Effects, eff)
			return n, nil
		case num == fieldPlayerDirection:
			v, n, err := consumePosition(num, typ, b)
			p.Direction = v
			return n, err
		}
		return skip(num, typ, b)
	})
	return p, err
}

func decodeEffect(b []byte) (netcomponents.Effect, error) {
	var eff netcomponents.Effect
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldEffectID:
			v, n, err := consumeVarint(num, typ, b)
			eff.ID = netconfig.EffectID(v)
			return n, err
		case fieldEffectCausedBy:
			v, n, err := consumeVarint(num, typ, b)
			eff.CausedBy = v
			return n, err
		case fieldEffectRemaining:
			v, n, err := consumeVarint(num, typ, b)
			eff.RemainingMs = v
			return n, err
		}
		return skip(num, typ, b)
	})
	return eff, err
}

func decodeProjectile(b []byte) (netcomponents.EntityState, error) {
	p := netcomponents.EntityState{Key: netcomponents.ProjectileKey(0)}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldProjID:
			v, n, err := consumeVarint(num, typ, b)
			p.Key.ID = v
			return n, err
		case fieldProjPosition:
			v, n, err := consumePosition(num, typ, b)
			p.Position = v
			return n, err
		case fieldProjDirection:
			v, n, err := consumePosition(num, typ, b)
			p.Direction = v
			return n, err
		case fieldProjSpeed:
			v, n, err := consumeDouble(num, typ, b)
			p.Speed = v
			return n, err
		case fieldProjDamage:
			v, n, err := consumeVarint(num, typ, b)
			p.Damage = uint32(v)
			return n, err
		case fieldProjOwner:
			v, n, err := consumeVarint(num, typ, b)
			p.OwnerID = v
			return n, err
		case fieldProjRemaining:
			v, n, err := consumeSint(num, typ, b)
			p.RemainingTicks = v
			return n, err
		case fieldProjType:
			v, n, err := consumeVarint(num, typ, b)
			p.ProjectileType = netconfig.ProjectileType(v)
			return n, err
		case fieldProjStatus:
			v, n, err := consumeVarint(num, typ, b)
			p.ProjectileStatus = netconfig.ProjectileStatus(v)
			return n, err
		}
		return skip(num, typ, b)
	})
	return p, err
}

func decodeLoot(b []byte) (netcomponents.EntityState, error) {
	l := netcomponents.EntityState{Key: netcomponents.LootKey(0)}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldLootID:
			v, n, err := consumeVarint(num, typ, b)
			l.Key.ID = v
			return n, err
		case fieldLootType:
			v, n, err := consumeVarint(num, typ, b)
			l.LootType = netconfig.LootType(v)
			return n, err
		case fieldLootPosition:
			v, n, err := consumePosition(num, typ, b)
			l.Position = v
			return n, err
		case fieldLootValue:
			v, n, err := consumeVarint(num, typ, b)
			l.LootValue = v
			return n, err
		}
		return skip(num, typ, b)
	})
	return l, err
}
