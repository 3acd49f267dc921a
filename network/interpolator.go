package network

import (
	"github.com/automoto/mirra-netsync/shared/netcomponents"
)

// Interpolator turns buffered snapshots into the world state to draw for a
// given render time. It only reads the buffer.
type Interpolator struct {
	buffer         *SnapshotBuffer
	PlayoutDelayMs int64
}

func NewInterpolator(buffer *SnapshotBuffer, playoutDelayMs int64) *Interpolator {
	return &Interpolator{buffer: buffer, PlayoutDelayMs: playoutDelayMs}
}

// Sample returns the world state at renderTime minus the playout delay. The
// second result is false when no snapshot has been buffered yet.
func (in *Interpolator) Sample(renderTime int64) (netcomponents.WorldState, bool) {
	t := renderTime - in.PlayoutDelayMs
	older, newer, ok := in.buffer.Around(t)
	if !ok {
		return netcomponents.WorldState{}, false
	}
	if older == newer {
		return netcomponents.StateOf(newer), true
	}

	frac := fraction(t, older.Timestamp(), newer.Timestamp())
	state := netcomponents.WorldState{
		Timestamp:    t,
		Phase:        newer.Phase(),
		Entities:     make([]netcomponents.EntityState, 0, newer.Len()),
		Interpolated: true,
	}

	newer.Each(func(to netcomponents.EntityState) bool {
		from, found := older.Entity(to.Key)
		if !found {
			// Spawned between the two ticks: shown where it first appeared.
			state.Entities = append(state.Entities, to)
			return true
		}
		state.Entities = append(state.Entities, netcomponents.LerpEntity(from, to, frac))
		return true
	})

	// Gone in the newer tick: held at its last known state.
	older.Each(func(from netcomponents.EntityState) bool {
		if _, found := newer.Entity(from.Key); !found {
			state.Entities = append(state.Entities, from)
		}
		return true
	})

	return state, true
}

func fraction(t, from, to int64) float64 {
	if to <= from {
		return 1
	}
	f := float64(t-from) / float64(to-from)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
