package network

import (
	"math"
	"testing"

	"github.com/automoto/mirra-netsync/shared/netcomponents"
	"github.com/go-gl/mathgl/mgl64"
)

func TestInterpolatorEndToEnd(t *testing.T) {
	b := NewSnapshotBuffer(8, 0)
	for i, ts := range []int64{0, 100, 200} {
		b.Push(snapAt(ts, float64(i)))
	}
	in := NewInterpolator(b, 0)

	tests := []struct {
		renderTime int64
		wantX      float64
	}{
		{renderTime: 150, wantX: 1.5},
		{renderTime: 50, wantX: 0.5},
		{renderTime: 1000, wantX: 2.0},
	}
	for _, tt := range tests {
		state, ok := in.Sample(tt.renderTime)
		if !ok {
			t.Fatalf("Sample(%d) not ok", tt.renderTime)
		}
		p, found := state.Entity(netcomponents.PlayerKey(1))
		if !found {
			t.Fatalf("Sample(%d) lost the player", tt.renderTime)
		}
		if math.Abs(p.Position.X()-tt.wantX) > 1e-9 {
			t.Fatalf("Sample(%d) x = %v, want %v", tt.renderTime, p.Position.X(), tt.wantX)
		}
	}
}

func TestInterpolatorPlayoutDelay(t *testing.T) {
	b := NewSnapshotBuffer(8, 0)
	for i, ts := range []int64{0, 100, 200} {
		b.Push(snapAt(ts, float64(i)))
	}
	in := NewInterpolator(b, 100)

	state, _ := in.Sample(250)
	p, _ := state.Entity(netcomponents.PlayerKey(1))
	if math.Abs(p.Position.X()-1.5) > 1e-9 {
		t.Fatalf("x = %v, want 1.5 with 100ms delay", p.Position.X())
	}
	if state.Timestamp != 150 {
		t.Fatalf("Timestamp = %d, want 150", state.Timestamp)
	}
}

func TestInterpolatorConvexCombination(t *testing.T) {
	b := NewSnapshotBuffer(8, 0)
	from := mgl64.Vec2{-30, 12}
	to := mgl64.Vec2{90, -4}
	b.Push(netcomponents.NewSnapshot(1000, netcomponents.Phase{}, []netcomponents.EntityState{
		{Key: netcomponents.PlayerKey(1), Position: from},
	}, nil))
	b.Push(netcomponents.NewSnapshot(1033, netcomponents.Phase{}, []netcomponents.EntityState{
		{Key: netcomponents.PlayerKey(1), Position: to},
	}, nil))
	in := NewInterpolator(b, 0)

	for rt := int64(1000); rt <= 1033; rt++ {
		state, _ := in.Sample(rt)
		p, _ := state.Entity(netcomponents.PlayerKey(1))
		f := float64(rt-1000) / 33
		want := netcomponents.LerpPosition(from, to, f)
		if p.Position.Sub(want).Len() > 1e-9 {
			t.Fatalf("Sample(%d) = %v, want %v", rt, p.Position, want)
		}
		for i := range 2 {
			lo, hi := math.Min(from[i], to[i]), math.Max(from[i], to[i])
			if p.Position[i] < lo || p.Position[i] > hi {
				t.Fatalf("Sample(%d) component %d = %v outside [%v, %v]", rt, i, p.Position[i], lo, hi)
			}
		}
	}
}

func TestInterpolatorBeyondNewestReturnsSnapshot(t *testing.T) {
	b := NewSnapshotBuffer(8, 0)
	b.Push(snapAt(0, 0))
	newest := netcomponents.NewSnapshot(100, netcomponents.Phase{RoundActive: true, PlayableRadius: 900}, []netcomponents.EntityState{
		{Key: netcomponents.PlayerKey(1), Position: mgl64.Vec2{7, 3}, Health: 42},
		{Key: netcomponents.ProjectileKey(4), Position: mgl64.Vec2{1, 1}},
	}, nil)
	b.Push(newest)

	state, ok := NewInterpolator(b, 0).Sample(5000)
	if !ok {
		t.Fatalf("Sample not ok")
	}
	if state.Interpolated {
		t.Fatalf("Interpolated = true past the newest snapshot")
	}
	want := netcomponents.StateOf(newest)
	if state.Timestamp != want.Timestamp || state.Phase != want.Phase || len(state.Entities) != len(want.Entities) {
		t.Fatalf("Sample = %+v, want %+v", state, want)
	}
	for i := range want.Entities {
		if state.Entities[i].Key != want.Entities[i].Key || state.Entities[i].Position != want.Entities[i].Position {
			t.Fatalf("entity %d = %+v, want %+v", i, state.Entities[i], want.Entities[i])
		}
	}
}

func TestInterpolatorAppearingAndDisappearing(t *testing.T) {
	b := NewSnapshotBuffer(8, 0)
	b.Push(netcomponents.NewSnapshot(0, netcomponents.Phase{}, []netcomponents.EntityState{
		{Key: netcomponents.PlayerKey(1), Position: mgl64.Vec2{0, 0}},
		{Key: netcomponents.ProjectileKey(9), Position: mgl64.Vec2{50, 50}},
	}, nil))
	b.Push(netcomponents.NewSnapshot(100, netcomponents.Phase{}, []netcomponents.EntityState{
		{Key: netcomponents.PlayerKey(1), Position: mgl64.Vec2{10, 0}},
		{Key: netcomponents.LootKey(2), Position: mgl64.Vec2{-20, 5}},
	}, nil))

	state, _ := NewInterpolator(b, 0).Sample(50)
	if len(state.Entities) != 3 {
		t.Fatalf("entities = %d, want 3", len(state.Entities))
	}
	if p, _ := state.Entity(netcomponents.PlayerKey(1)); p.Position != (mgl64.Vec2{5, 0}) {
		t.Fatalf("player = %v, want [5 0]", p.Position)
	}
	if l, ok := state.Entity(netcomponents.LootKey(2)); !ok || l.Position != (mgl64.Vec2{-20, 5}) {
		t.Fatalf("appearing loot = %v, %v; want snapped to [-20 5]", l.Position, ok)
	}
	if p, ok := state.Entity(netcomponents.ProjectileKey(9)); !ok || p.Position != (mgl64.Vec2{50, 50}) {
		t.Fatalf("disappearing projectile = %v, %v; want held at [50 50]", p.Position, ok)
	}
}

func TestInterpolatorEmptyBuffer(t *testing.T) {
	if _, ok := NewInterpolator(NewSnapshotBuffer(4, 0), 100).Sample(1000); ok {
		t.Fatalf("Sample on empty buffer returned ok")
	}
}
