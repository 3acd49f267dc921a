// Package protocol encodes and decodes the game's binary wire messages. Frames
// use the protobuf wire format so they interoperate with the game server's
// generated code; the schema is kept here as field-number constants:
//
//	message GameEvent {
//	  GameEventType type = 1;
//	  repeated Player players = 2;
//	  uint64 latency = 3;
//	  repeated Projectile projectiles = 4;
//	  Player winner_player = 5;
//	  map<uint64, string> selected_characters = 6;
//	  int64 server_timestamp = 7;
//	  repeated KillEntry killfeed = 8;
//	  double playable_radius = 9;
//	  Position shrinking_center = 10;
//	  repeated LootPackage loots = 11;
//	}
//
//	message ClientAction {
//	  Action action = 1;
//	  Position direction = 2;
//	  int64 timestamp = 3;
//	}
package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrDecode is wrapped by every error returned from Decode and DecodeAction.
var ErrDecode = errors.New("protocol: malformed frame")

func decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// GameEvent fields
const (
	fieldEventType         protowire.Number = 1
	fieldEventPlayers      protowire.Number = 2
	fieldEventLatency      protowire.Number = 3
	fieldEventProjectiles  protowire.Number = 4
	fieldEventWinner       protowire.Number = 5
	fieldEventSelected     protowire.Number = 6
	fieldEventTimestamp    protowire.Number = 7
	fieldEventKillfeed     protowire.Number = 8
	fieldEventRadius       protowire.Number = 9
	fieldEventShrinkCenter protowire.Number = 10
	fieldEventLoots        protowire.Number = 11
	fieldSelectedMapKey    protowire.Number = 1
	fieldSelectedMapValue  protowire.Number = 2
	fieldKillKiller        protowire.Number = 1
	fieldKillVictim        protowire.Number = 2
	fieldPositionX         protowire.Number = 1
	fieldPositionY         protowire.Number = 2
	fieldEffectID          protowire.Number = 1
	fieldEffectCausedBy    protowire.Number = 2
	fieldEffectRemaining   protowire.Number = 3
	fieldLootID            protowire.Number = 1
	fieldLootType          protowire.Number = 2
	fieldLootPosition      protowire.Number = 3
	fieldLootValue         protowire.Number = 4
	fieldActionAction      protowire.Number = 1
	fieldActionDirection   protowire.Number = 2
	fieldActionTimestamp   protowire.Number = 3
)

// Player fields
const (
	fieldPlayerID          protowire.Number = 1
	fieldPlayerHealth      protowire.Number = 2
	fieldPlayerPosition    protowire.Number = 3
	fieldPlayerStatus      protowire.Number = 4
	fieldPlayerAction      protowire.Number = 5
	fieldPlayerAOEPosition protowire.Number = 6
	fieldPlayerKillCount   protowire.Number = 7
	fieldPlayerDeathCount  protowire.Number = 8
	fieldPlayerCooldown0   protowire.Number = 9 // basic, first, second, ultimate = 9..12
	fieldPlayerName        protowire.Number = 13
	fieldPlayerEffects     protowire.Number = 14
	fieldPlayerDirection   protowire.Number = 15
)

// Projectile fields
const (
	fieldProjID        protowire.Number = 1
	fieldProjPosition  protowire.Number = 2
	fieldProjDirection protowire.Number = 3
	fieldProjSpeed     protowire.Number = 4
	fieldProjDamage    protowire.Number = 5
	fieldProjOwner     protowire.Number = 6
	fieldProjRemaining protowire.Number = 7
	fieldProjType      protowire.Number = 8
	fieldProjStatus    protowire.Number = 9
)
