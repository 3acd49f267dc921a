package netcomponents

import "github.com/automoto/mirra-netsync/shared/netconfig"

// KillEntry is one kill-feed delta carried by a state update.
type KillEntry struct {
	KillerID  uint64
	VictimID  uint64
	Timestamp int64 // server ms of the snapshot that carried it
}

// ByZone reports whether the shrinking zone, not a player, caused the death.
func (k KillEntry) ByZone() bool {
	return k.KillerID == netconfig.ZoneKillerID
}
