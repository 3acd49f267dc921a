package factory

import (
	"testing"

	"github.com/automoto/mirra-netsync/components"
	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

func world(entities ...netcomponents.EntityState) netcomponents.WorldState {
	return netcomponents.WorldState{Entities: entities}
}

func count(w donburi.World) int {
	n := 0
	components.NetEntity.Each(w, func(*donburi.Entry) { n++ })
	return n
}

func TestSyncEntities(t *testing.T) {
	w := donburi.NewWorld()
	p1 := netcomponents.EntityState{Key: netcomponents.PlayerKey(1), Position: mgl64.Vec2{1, 1}}
	p2 := netcomponents.EntityState{Key: netcomponents.PlayerKey(2)}
	// Same id, different kind: a separate entity.
	shot := netcomponents.EntityState{Key: netcomponents.ProjectileKey(1)}

	SyncEntities(w, world(p1, p2, shot), 1)
	if got := count(w); got != 3 {
		t.Fatalf("entities = %d, want 3", got)
	}

	p1.Position = mgl64.Vec2{5, 5}
	SyncEntities(w, world(p1, shot), 1)
	if got := count(w); got != 2 {
		t.Fatalf("entities after removal = %d, want 2", got)
	}

	st, ok := FindPlayer(w, 1)
	if !ok || st.Position != p1.Position {
		t.Errorf("player 1 = %+v, %v", st, ok)
	}
	if _, ok := FindPlayer(w, 2); ok {
		t.Error("player 2 still mirrored")
	}

	var local int
	components.NetEntity.Each(w, func(e *donburi.Entry) {
		if components.NetEntity.Get(e).Local {
			local++
		}
	})
	if local != 1 {
		t.Errorf("local entities = %d, want 1", local)
	}
}

func TestCreateSingletons(t *testing.T) {
	w := donburi.NewWorld()
	CreateCamera(w, 7, 10)
	CreateMatch(w, 7)

	cam, ok := components.Camera.First(w)
	if !ok || components.Camera.Get(cam).Target != 7 {
		t.Fatalf("camera missing or wrong target")
	}
	m, ok := components.Match.First(w)
	if !ok || !components.Match.Get(m).BotsActive {
		t.Fatalf("match singleton missing")
	}
}
