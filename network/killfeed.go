package network

import (
	"github.com/automoto/mirra-netsync/shared/netcomponents"
)

// KillFeed queues kill entries for the HUD and follows the spectator target:
// when the tracked player dies, the camera moves on to their killer.
type KillFeed struct {
	localPlayerID uint64

	pending []netcomponents.KillEntry // not yet drained by the HUD

	playerToTrack uint64
	savedKillerID uint64
	myKillerID    uint64
}

func NewKillFeed(localPlayerID uint64) *KillFeed {
	return &KillFeed{
		localPlayerID: localPlayerID,
		playerToTrack: localPlayerID,
	}
}

// Put enqueues the kill entries of one state update and advances spectator
// chaining. Zone kills do not move the camera.
func (k *KillFeed) Put(entries []netcomponents.KillEntry) {
	for _, e := range entries {
		if k.playerToTrack == e.VictimID && !e.ByZone() {
			k.savedKillerID = e.KillerID
			k.playerToTrack = e.KillerID
		}
		if e.VictimID == k.localPlayerID {
			k.myKillerID = e.KillerID
		}
	}
	k.pending = append(k.pending, entries...)
}

// Drain returns and clears the entries not yet shown.
func (k *KillFeed) Drain() []netcomponents.KillEntry {
	out := k.pending
	k.pending = nil
	return out
}

// Follow re-targets the camera when the tracked player is dead without a
// kill entry naming them, for example after a reconnect.
func (k *KillFeed) Follow(tracked netcomponents.EntityState, found bool) {
	if found && !tracked.Alive() && k.savedKillerID != 0 {
		k.playerToTrack = k.savedKillerID
	}
}

// GetKiller returns the most recent killer of victimID among the entries not
// yet drained, or 0.
func (k *KillFeed) GetKiller(victimID uint64) uint64 {
	var killer uint64
	for _, e := range k.pending {
		if e.VictimID == victimID {
			killer = e.KillerID
		}
	}
	return killer
}

// MyKiller returns who killed the local player, or 0. ZoneKillerID means the
// shrinking zone.
func (k *KillFeed) MyKiller() uint64 {
	return k.myKillerID
}

// PlayerToTrack is the player the spectator camera should follow.
func (k *KillFeed) PlayerToTrack() uint64 {
	return k.playerToTrack
}
