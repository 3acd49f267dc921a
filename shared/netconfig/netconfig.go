// Package netconfig defines lightweight enums shared between the sync layer,
// the development server and the wire codec. It must have zero dependencies on
// ebiten or any graphics library so headless binaries stay headless.
package netconfig

// EntityKind discriminates the entity collections carried by a state update.
type EntityKind uint8

const (
	KindPlayer EntityKind = iota
	KindProjectile
	KindLoot
)

var kindNames = map[EntityKind]string{
	KindPlayer:     "player",
	KindProjectile: "projectile",
	KindLoot:       "loot",
}

func (k EntityKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// PlayerStatus mirrors the server's life-cycle flag for a player.
type PlayerStatus uint8

const (
	StatusAlive PlayerStatus = iota
	StatusDead
	StatusDisconnected
)

var statusNames = map[PlayerStatus]string{
	StatusAlive:        "alive",
	StatusDead:         "dead",
	StatusDisconnected: "disconnected",
}

func (s PlayerStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// PlayerAction is what the server reports a player doing this tick.
type PlayerAction uint8

const (
	PlayerNothing PlayerAction = iota
	PlayerAttacking
	PlayerAttackingAOE
	PlayerExecutingSkill1
	PlayerExecutingSkill2
	PlayerExecutingSkill3
	PlayerExecutingSkill4
	PlayerMoving
)

// EffectID identifies a status effect applied to a player.
type EffectID uint16

const (
	EffectNone EffectID = iota
	EffectSlowed
	EffectPoisoned
	EffectDisarmed
	EffectPiercing
	EffectXandaMark
	EffectYugenMark
	EffectElnarMark
	EffectNeonCrash
	EffectLeap
)

var effectNames = map[EffectID]string{
	EffectNone:      "none",
	EffectSlowed:    "slowed",
	EffectPoisoned:  "poisoned",
	EffectDisarmed:  "disarmed",
	EffectPiercing:  "piercing",
	EffectXandaMark: "xanda_mark",
	EffectYugenMark: "yugen_mark",
	EffectElnarMark: "elnar_mark",
	EffectNeonCrash: "neon_crash",
	EffectLeap:      "leap",
}

func (e EffectID) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return "unknown"
}

// ProjectileType and ProjectileStatus describe projectile entities.
type ProjectileType uint8

const (
	ProjectileBullet ProjectileType = iota
	ProjectileDisarmingBullet
)

type ProjectileStatus uint8

const (
	ProjectileActive ProjectileStatus = iota
	ProjectileExploded
)

// LootType is the pickup kind of a loot entity.
type LootType uint8

const (
	LootHealth LootType = iota
)

// ActionID is a client action sent to the server.
type ActionID uint8

const (
	ActionNone ActionID = iota
	ActionMove
	ActionBasicAttack
	ActionSkill1
	ActionSkill2
	ActionSkill3
	ActionSkill4
	ActionAddBot
	ActionEnableBots
	ActionDisableBots
	ActionCount // Must be last - used for validation
)

var actionNames = map[ActionID]string{
	ActionNone:        "none",
	ActionMove:        "move",
	ActionBasicAttack: "basic_attack",
	ActionSkill1:      "skill_1",
	ActionSkill2:      "skill_2",
	ActionSkill3:      "skill_3",
	ActionSkill4:      "skill_4",
	ActionAddBot:      "add_bot",
	ActionEnableBots:  "enable_bots",
	ActionDisableBots: "disable_bots",
}

func (a ActionID) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// IsSkill reports whether the action is an attack or skill that may carry a
// direction.
func (a ActionID) IsSkill() bool {
	return a >= ActionBasicAttack && a <= ActionSkill4
}

// ZoneKillerID is the killer id the server reports for deaths caused by the
// shrinking zone rather than another player.
const ZoneKillerID uint64 = 9999
