package netcomponents

import (
	"slices"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// Phase is the game-phase metadata carried with every state update.
type Phase struct {
	RoundActive     bool
	WinnerID        uint64 // 0 when no winner yet
	PlayableRadius  float64
	ShrinkingCenter mgl64.Vec2
}

// Snapshot is one server tick's complete world state. It is immutable once
// built: entity order is the order the server sent them in, and lookups by key
// go through an insertion-ordered index.
type Snapshot struct {
	timestamp int64
	phase     Phase
	entities  *orderedmap.OrderedMap[EntityKey, EntityState]
	killFeed  []KillEntry
}

// NewSnapshot copies the given entities and kill entries into a new snapshot.
// A repeated key keeps its first position and the last value.
func NewSnapshot(timestamp int64, phase Phase, entities []EntityState, kills []KillEntry) *Snapshot {
	m := orderedmap.NewOrderedMap[EntityKey, EntityState]()
	for _, e := range entities {
		m.Set(e.Key, e)
	}
	return &Snapshot{
		timestamp: timestamp,
		phase:     phase,
		entities:  m,
		killFeed:  slices.Clone(kills),
	}
}

func (s *Snapshot) Timestamp() int64 { return s.timestamp }

func (s *Snapshot) Phase() Phase { return s.phase }

// Len returns the number of entities in the snapshot.
func (s *Snapshot) Len() int { return s.entities.Len() }

// Entity looks up an entity by key.
func (s *Snapshot) Entity(key EntityKey) (EntityState, bool) {
	return s.entities.Get(key)
}

// Each calls fn for every entity in wire order until fn returns false.
func (s *Snapshot) Each(fn func(EntityState) bool) {
	for el := s.entities.Front(); el != nil; el = el.Next() {
		if !fn(el.Value) {
			return
		}
	}
}

// Entities returns a copy of the entity list in wire order.
func (s *Snapshot) Entities() []EntityState {
	out := make([]EntityState, 0, s.entities.Len())
	s.Each(func(e EntityState) bool {
		out = append(out, e)
		return true
	})
	return out
}

// KillFeed returns a copy of the kill-feed deltas carried by this tick.
func (s *Snapshot) KillFeed() []KillEntry {
	return slices.Clone(s.killFeed)
}

// WorldState is the render-ready state produced for one frame.
type WorldState struct {
	Timestamp    int64 // sampled server time, after the playout delay
	Phase        Phase
	Entities     []EntityState
	Interpolated bool // false when a single snapshot was returned as-is
}

// Entity finds an entity by key.
func (w WorldState) Entity(key EntityKey) (EntityState, bool) {
	for _, e := range w.Entities {
		if e.Key == key {
			return e, true
		}
	}
	return EntityState{}, false
}

// StateOf builds a WorldState that reproduces the snapshot unmodified.
func StateOf(s *Snapshot) WorldState {
	return WorldState{
		Timestamp: s.timestamp,
		Phase:     s.phase,
		Entities:  s.Entities(),
	}
}
