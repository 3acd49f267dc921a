package factory

import (
	"github.com/automoto/mirra-netsync/components"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/yohamta/donburi"
)

// SyncEntities mirrors a sampled world state into w. Entities are matched by
// key: new keys are created, known keys overwritten and keys missing from ws
// removed.
func SyncEntities(w donburi.World, ws netcomponents.WorldState, localID uint64) {
	present := make(map[netcomponents.EntityKey]*donburi.Entry)
	components.NetEntity.Each(w, func(entry *donburi.Entry) {
		present[components.NetEntity.Get(entry).State.Key] = entry
	})

	local := netcomponents.PlayerKey(localID)
	for _, st := range ws.Entities {
		entry, ok := present[st.Key]
		if ok {
			delete(present, st.Key)
		} else {
			entry = w.Entry(w.Create(components.NetEntity))
		}
		components.NetEntity.SetValue(entry, components.NetEntityData{
			State: st,
			Local: st.Key == local,
		})
	}

	for _, entry := range present {
		entry.Remove()
	}
}

// FindPlayer returns the mirrored player with the given id.
func FindPlayer(w donburi.World, id uint64) (netcomponents.EntityState, bool) {
	key := netcomponents.PlayerKey(id)
	var (
		out   netcomponents.EntityState
		found bool
	)
	components.NetEntity.Each(w, func(entry *donburi.Entry) {
		if found {
			return
		}
		if st := components.NetEntity.Get(entry).State; st.Key == key {
			out, found = st, true
		}
	})
	return out, found
}
