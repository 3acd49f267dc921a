package protocol

import (
	"fmt"
	"slices"

	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"google.golang.org/protobuf/encoding/protowire"
)

// EncodeEvent renders a game event frame. The development server and tests use
// it; the client only decodes events.
func EncodeEvent(ev messages.Event) ([]byte, error) {
	if ev == nil {
		return nil, fmt.Errorf("trying to encode nil event")
	}

	var b []byte
	b = appendVarint(b, fieldEventType, uint64(ev.Type()))

	switch e := ev.(type) {
	case messages.StateUpdate:
		if e.Snapshot == nil {
			return nil, fmt.Errorf("trying to encode state update without snapshot")
		}
		b = appendSnapshot(b, e.Snapshot)
	case messages.PingUpdate:
		b = appendVarint(b, fieldEventLatency, e.LatencyMs)
	case messages.GameFinished:
		b = appendPlayers(b, e.Players)
		b = appendMessage(b, fieldEventWinner, appendPlayer(nil, e.Winner))
	case messages.InitialPositions:
		b = appendPlayers(b, e.Players)
	case messages.SelectedCharacterUpdate:
		b = appendSelected(b, e.Selected)
	case messages.FinishCharacterSelection:
		b = appendPlayers(b, e.Players)
		b = appendSelected(b, e.Selected)
	default:
		return nil, fmt.Errorf("trying to encode unknown event %T", ev)
	}
	return b, nil
}

// appendSnapshot writes the server timestamp last. Decode requires it, so a
// frame cut anywhere before its end is rejected instead of decoding as a
// shorter snapshot.
func appendSnapshot(b []byte, s *netcomponents.Snapshot) []byte {
	s.Each(func(e netcomponents.EntityState) bool {
		switch e.Key.Kind {
		case netconfig.KindPlayer:
			b = appendMessage(b, fieldEventPlayers, appendPlayer(nil, e))
		case netconfig.KindProjectile:
			b = appendMessage(b, fieldEventProjectiles, appendProjectile(nil, e))
		case netconfig.KindLoot:
			b = appendMessage(b, fieldEventLoots, appendLoot(nil, e))
		}
		return true
	})

	phase := s.Phase()
	if phase.WinnerID != 0 {
		b = appendMessage(b, fieldEventWinner, appendVarint(nil, fieldPlayerID, phase.WinnerID))
	}
	for _, k := range s.KillFeed() {
		var msg []byte
		msg = appendVarint(msg, fieldKillKiller, k.KillerID)
		msg = appendVarint(msg, fieldKillVictim, k.VictimID)
		b = appendMessage(b, fieldEventKillfeed, msg)
	}
	b = appendDouble(b, fieldEventRadius, phase.PlayableRadius)
	if phase.ShrinkingCenter != (netcomponents.Phase{}).ShrinkingCenter {
		b = appendPosition(b, fieldEventShrinkCenter, phase.ShrinkingCenter)
	}
	b = protowire.AppendTag(b, fieldEventTimestamp, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(s.Timestamp()))
}

func appendPlayers(b []byte, players []netcomponents.EntityState) []byte {
	for _, p := range players {
		b = appendMessage(b, fieldEventPlayers, appendPlayer(nil, p))
	}
	return b
}

func appendSelected(b []byte, selected map[uint64]string) []byte {
	keys := make([]uint64, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		var msg []byte
		msg = appendVarint(msg, fieldSelectedMapKey, k)
		msg = appendString(msg, fieldSelectedMapValue, selected[k])
		b = appendMessage(b, fieldEventSelected, msg)
	}
	return b
}

func appendPlayer(b []byte, p netcomponents.EntityState) []byte {
	b = appendVarint(b, fieldPlayerID, p.Key.ID)
	b = appendSint(b, fieldPlayerHealth, p.Health)
	b = appendPosition(b, fieldPlayerPosition, p.Position)
	b = appendVarint(b, fieldPlayerStatus, uint64(p.Status))
	b = appendVarint(b, fieldPlayerAction, uint64(p.Action))
	b = appendPosition(b, fieldPlayerAOEPosition, p.AOEPosition)
	b = appendVarint(b, fieldPlayerKillCount, p.KillCount)
	b = appendVarint(b, fieldPlayerDeathCount, p.DeathCount)
	for i, cd := range p.Cooldowns {
		b = appendVarint(b, fieldPlayerCooldown0+protowire.Number(i), cd)
	}
	b = appendString(b, fieldPlayerName, p.Name)
	for _, eff := range p.Effects {
		var msg []byte
		msg = appendVarint(msg, fieldEffectID, uint64(eff.ID))
		msg = appendVarint(msg, fieldEffectCausedBy, eff.CausedBy)
		msg = appendVarint(msg, fieldEffectRemaining, eff.RemainingMs)
		b = appendMessage(b, fieldPlayerEffects, msg)
	}
	b = appendPosition(b, fieldPlayerDirection, p.Direction)
	return b
}

func appendProjectile(b []byte, p netcomponents.EntityState) []byte {
	b = appendVarint(b, fieldProjID, p.Key.ID)
	b = appendPosition(b, fieldProjPosition, p.Position)
	b = appendPosition(b, fieldProjDirection, p.Direction)
	b = appendDouble(b, fieldProjSpeed, p.Speed)
	b = appendVarint(b, fieldProjDamage, uint64(p.Damage))
	b = appendVarint(b, fieldProjOwner, p.OwnerID)
	b = appendSint(b, fieldProjRemaining, p.RemainingTicks)
	b = appendVarint(b, fieldProjType, uint64(p.ProjectileType))
	b = appendVarint(b, fieldProjStatus, uint64(p.ProjectileStatus))
	return b
}

func appendLoot(b []byte, l netcomponents.EntityState) []byte {
	b = appendVarint(b, fieldLootID, l.Key.ID)
	b = appendVarint(b, fieldLootType, uint64(l.LootType))
	b = appendPosition(b, fieldLootPosition, l.Position)
	b = appendVarint(b, fieldLootValue, l.LootValue)
	return b
}

// EncodeAction renders an outbound client action frame.
func EncodeAction(a messages.ClientAction) ([]byte, error) {
	if a.Action == netconfig.ActionNone || a.Action >= netconfig.ActionCount {
		return nil, fmt.Errorf("trying to encode invalid action %d", a.Action)
	}
	var b []byte
	b = appendVarint(b, fieldActionAction, uint64(a.Action))
	if a.HasDirection {
		b = appendPosition(b, fieldActionDirection, a.Direction)
	}
	b = appendVarint(b, fieldActionTimestamp, uint64(a.Timestamp))
	return b, nil
}

// DecodeAction parses an outbound client action frame.
func DecodeAction(b []byte) (messages.ClientAction, error) {
	var a messages.ClientAction
	if len(b) == 0 {
		return a, decodeErr("empty frame")
	}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldActionAction:
			v, n, err := consumeVarint(num, typ, b)
			a.Action = netconfig.ActionID(v)
			return n, err
		case fieldActionDirection:
			v, n, err := consumePosition(num, typ, b)
			a.Direction = v
			a.HasDirection = true
			return n, err
		case fieldActionTimestamp:
			v, n, err := consumeVarint(num, typ, b)
			a.Timestamp = int64(v)
			return n, err
		}
		return skip(num, typ, b)
	})
	if err != nil {
		return messages.ClientAction{}, err
	}
	if a.Action == netconfig.ActionNone || a.Action >= netconfig.ActionCount {
		return messages.ClientAction{}, decodeErr("unknown action %d", a.Action)
	}
	return a, nil
}
