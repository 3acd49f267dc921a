package network

import (
	"testing"

	"github.com/automoto/mirra-netsync/config"
)

func testHealthConfig() config.HealthConfig {
	return config.HealthConfig{
		SamplesToCheckWarning:      5,
		SamplesMaxLength:           30,
		ShowWarningThreshold:       75,
		StopWarningThreshold:       40,
		MsWithoutUpdateShowWarning: 3000,
		MsWithoutUpdateDisconnect:  10000,
	}
}

func TestHealthMonitorSpikeFiresOnce(t *testing.T) {
	m := NewHealthMonitor(testHealthConfig(), nil)

	var ts int64
	transitions := 0
	observe := func(step int64) {
		ts += step
		if m.Observe(ts, ts) {
			transitions++
		}
	}

	for range 5 {
		observe(33)
	}
	if m.State() != ConnectionStable || transitions != 0 {
		t.Fatalf("steady 33ms: state %v after %d transitions, want stable", m.State(), transitions)
	}

	observe(200)
	if m.State() != ConnectionUnstable || transitions != 1 {
		t.Fatalf("after spike: state %v after %d transitions, want unstable after 1", m.State(), transitions)
	}
	if m.Ping() != 200 {
		t.Fatalf("Ping = %d, want 200", m.Ping())
	}

	// The spike stays in the window for a while; no further transitions.
	for range 20 {
		observe(33)
	}
	if m.State() != ConnectionUnstable || transitions != 1 {
		t.Fatalf("while spike in window: state %v after %d transitions", m.State(), transitions)
	}

	// Push the spike out of the window.
	for range 30 {
		observe(33)
	}
	if m.State() != ConnectionStable || transitions != 2 {
		t.Fatalf("after recovery: state %v after %d transitions, want stable after 2", m.State(), transitions)
	}
	if n := len(m.Window()); n != 30 {
		t.Fatalf("window length = %d, want 30", n)
	}
}

func TestHealthMonitorNeedsKSamples(t *testing.T) {
	m := NewHealthMonitor(testHealthConfig(), nil)
	// Four samples with a huge spread: no check yet.
	for _, ts := range []int64{0, 10, 1000, 1010} {
		if m.Observe(ts, ts) {
			t.Fatalf("transition before K samples at ts %d", ts)
		}
	}
	if m.Observe(1020, 1020) != true || m.State() != ConnectionUnstable {
		t.Fatalf("fifth sample did not trigger the check, state %v", m.State())
	}
}

// Regression against the literal window slicing: the warning compares the max
// with the average of the oldest K samples, and it takes precedence over the
// full-window recovery check.
func TestHealthMonitorLiteralWindowSlicing(t *testing.T) {
	m := NewHealthMonitor(testHealthConfig(), nil)

	for range 5 {
		m.Observe(0, 0)
	}
	var ts int64
	for range 25 {
		ts += 100
		m.Observe(ts, ts)
	}
	// window = [0 x5, 100 x25]: 100 - avg(first 5) = 100 > 75 while
	// 100 - avg(all) = 16.7 < 40. The warning wins.
	if m.State() != ConnectionUnstable {
		t.Fatalf("state = %v, want unstable", m.State())
	}

	ts += 100
	m.Observe(ts, ts)
	// [0 x4, 100 x26]: 100 - 20 = 80 > 75.
	if m.State() != ConnectionUnstable {
		t.Fatalf("state = %v, want unstable with four zeros left", m.State())
	}

	ts += 100
	m.Observe(ts, ts)
	// [0 x3, 100 x27]: 100 - 40 = 60, and 100 - 90 = 10 < 40.
	if m.State() != ConnectionStable {
		t.Fatalf("state = %v, want stable with three zeros left", m.State())
	}
}

func TestHealthMonitorStaleness(t *testing.T) {
	m := NewHealthMonitor(testHealthConfig(), nil)
	if m.Check(1_000_000) {
		t.Fatalf("Check before any update changed state")
	}

	m.Observe(500, 1000)
	if m.Check(3999) {
		t.Fatalf("warning before 3000ms without update")
	}
	if !m.Check(4001) || m.State() != ConnectionUnstable {
		t.Fatalf("state = %v, want unstable after 3001ms", m.State())
	}
	if m.Check(10999) {
		t.Fatalf("second transition before disconnect timeout")
	}
	if !m.Check(11001) || m.State() != ConnectionDisconnected {
		t.Fatalf("state = %v, want disconnected after 10001ms", m.State())
	}

	// Terminal and one-shot.
	if m.Check(20000) {
		t.Fatalf("Disconnected reported twice")
	}
	for ts := int64(600); ts < 1200; ts += 33 {
		if m.Observe(ts, 20000+ts) {
			t.Fatalf("Observe changed state after disconnect")
		}
	}
	if m.State() != ConnectionDisconnected {
		t.Fatalf("state = %v, want disconnected until reset", m.State())
	}

	m.Reset()
	if m.State() != ConnectionStable || len(m.Window()) != 0 || m.Ping() != 0 {
		t.Fatalf("Reset left state %v window %v ping %d", m.State(), m.Window(), m.Ping())
	}
}

func TestHealthMonitorPing(t *testing.T) {
	m := NewHealthMonitor(testHealthConfig(), nil)
	m.Observe(100, 0)
	if m.Ping() != 0 {
		t.Fatalf("first sample ping = %d, want 0", m.Ping())
	}
	m.Observe(140, 40)
	if m.Ping() != 40 {
		t.Fatalf("Ping = %d, want 40", m.Ping())
	}
	m.SetPing(87)
	if m.Ping() != 87 {
		t.Fatalf("Ping after SetPing = %d, want 87", m.Ping())
	}
}
