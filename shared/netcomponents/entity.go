package netcomponents

import (
	"fmt"

	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// EntityKey identifies an entity across snapshots. Ids are only unique within
// a kind, so the kind is part of the key.
type EntityKey struct {
	Kind netconfig.EntityKind
	ID   uint64
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

func PlayerKey(id uint64) EntityKey     { return EntityKey{Kind: netconfig.KindPlayer, ID: id} }
func ProjectileKey(id uint64) EntityKey { return EntityKey{Kind: netconfig.KindProjectile, ID: id} }
func LootKey(id uint64) EntityKey       { return EntityKey{Kind: netconfig.KindLoot, ID: id} }

// Effect is an active status effect and the entity that caused it.
type Effect struct {
	ID          netconfig.EffectID
	CausedBy    uint64
	RemainingMs uint64
}

// Cooldown slots, indexed into EntityState.Cooldowns.
const (
	CooldownBasic = iota
	CooldownFirst
	CooldownSecond
	CooldownUltimate
	cooldownSlots
)

// EntityState is one entity's full state at a server tick. Players use the
// combat fields, projectiles the owner/speed fields and loot the pickup
// fields; the rest stay zero.
type EntityState struct {
	Key       EntityKey
	Position  mgl64.Vec2
	Direction mgl64.Vec2

	// Players
	Name        string
	Health      int64
	Status      netconfig.PlayerStatus
	Action      netconfig.PlayerAction
	AOEPosition mgl64.Vec2
	KillCount   uint64
	DeathCount  uint64
	Cooldowns   [cooldownSlots]uint64 // ms left per slot
	Effects     []Effect              // shared with the snapshot, do not mutate

	// Projectiles
	OwnerID          uint64
	Speed            float64
	Damage           uint32
	RemainingTicks   int64
	ProjectileType   netconfig.ProjectileType
	ProjectileStatus netconfig.ProjectileStatus

	// Loot
	LootType  netconfig.LootType
	LootValue uint64
}

// Alive reports whether a player entity is alive. Non-player entities are
// always considered alive.
func (e EntityState) Alive() bool {
	if e.Key.Kind != netconfig.KindPlayer {
		return true
	}
	return e.Status == netconfig.StatusAlive && e.Health > 0
}

// HasEffect reports whether the effect is active on the entity.
func (e EntityState) HasEffect(id netconfig.EffectID) bool {
	for _, eff := range e.Effects {
		if eff.ID == id {
			return true
		}
	}
	return false
}
