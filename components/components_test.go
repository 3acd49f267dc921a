package components

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCameraRetargetPans(t *testing.T) {
	c := CameraData{Position: mgl64.Vec2{0, 0}, Target: 1}

	c.Retarget(1, 1)
	if c.Panning() {
		t.Fatal("retarget to the same player started a pan")
	}

	c.Retarget(2, 1)
	target := mgl64.Vec2{100, 0}
	c.Follow(target, 0.5)
	if !c.Panning() {
		t.Fatal("pan finished early")
	}
	if c.Position.X() <= 0 || c.Position.X() >= 100 {
		t.Errorf("mid-pan position = %v", c.Position)
	}

	c.Follow(target, 1)
	if c.Panning() || c.Position != target {
		t.Errorf("after pan: panning=%v position=%v", c.Panning(), c.Position)
	}

	moved := mgl64.Vec2{120, 5}
	c.Follow(moved, 0.016)
	if c.Position != moved {
		t.Errorf("settled camera did not follow: %v", c.Position)
	}
}

func TestFeedLimitAndExpiry(t *testing.T) {
	var m MatchData
	now := time.Unix(100, 0)
	m.PushFeed("a", now.Add(time.Second), 2)
	m.PushFeed("b", now.Add(3*time.Second), 2)
	m.PushFeed("c", now.Add(3*time.Second), 2)
	if len(m.Feed) != 2 || m.Feed[0].Text != "b" {
		t.Fatalf("feed = %+v", m.Feed)
	}

	m.PushFeed("d", now.Add(time.Second), 0)
	m.PruneFeed(now.Add(2 * time.Second))
	if len(m.Feed) != 2 || m.Feed[0].Text != "b" || m.Feed[1].Text != "c" {
		t.Errorf("after prune = %+v", m.Feed)
	}
}
