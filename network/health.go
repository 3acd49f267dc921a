package network

import (
	"log/slog"

	"github.com/automoto/mirra-netsync/config"
)

type ConnectionState int

const (
	ConnectionStable ConnectionState = iota
	ConnectionUnstable
	ConnectionDisconnected
)

var connectionStateNames = map[ConnectionState]string{
	ConnectionStable:       "stable",
	ConnectionUnstable:     "unstable",
	ConnectionDisconnected: "disconnected",
}

func (s ConnectionState) String() string {
	if name, ok := connectionStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// HealthMonitor watches the spacing of state-update timestamps and the time
// since the last one arrived. Disconnected is terminal until Reset.
//
// The warning check compares the window maximum against the average of the
// first K samples in the window, and the recovery check against the average
// of the whole window. Both run only once K samples exist.
type HealthMonitor struct {
	cfg    config.HealthConfig
	logger *slog.Logger

	window        []int64
	lastTimestamp int64 // server clock
	lastArrival   int64 // local clock
	started       bool

	state ConnectionState
	ping  uint64
}

func NewHealthMonitor(cfg config.HealthConfig, logger *slog.Logger) *HealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SamplesToCheckWarning < 1 {
		cfg.SamplesToCheckWarning = 1
	}
	if cfg.SamplesMaxLength < cfg.SamplesToCheckWarning {
		cfg.SamplesMaxLength = cfg.SamplesToCheckWarning
	}
	return &HealthMonitor{
		cfg:    cfg,
		logger: logger.With("component", "health"),
		window: make([]int64, 0, cfg.SamplesMaxLength),
	}
}

// Observe records a state update carrying serverTimestamp that arrived at the
// local time now (ms). It reports whether the connection state changed.
func (m *HealthMonitor) Observe(serverTimestamp, now int64) bool {
	if m.state == ConnectionDisconnected {
		return false
	}
	if !m.started {
		m.lastTimestamp = serverTimestamp
		m.started = true
	}

	diff := serverTimestamp - m.lastTimestamp
	m.lastTimestamp = serverTimestamp
	m.lastArrival = now

	if len(m.window) >= m.cfg.SamplesMaxLength {
		m.window = append(m.window[:0], m.window[1:]...)
	}
	m.window = append(m.window, diff)
	m.ping = uint64(max(diff, 0))

	k := m.cfg.SamplesToCheckWarning
	if len(m.window) < k {
		return false
	}

	peak := float64(maxSample(m.window))
	next := m.state
	switch {
	case peak-average(m.window[:k]) > float64(m.cfg.ShowWarningThreshold):
		next = ConnectionUnstable
	case peak-average(m.window) < float64(m.cfg.StopWarningThreshold):
		next = ConnectionStable
	}
	return m.transition(next, "jitter")
}

// Check applies the staleness timers at local time now. It returns true only
// on the call that moved the monitor into a new state, so a Disconnected
// result is reported once.
func (m *HealthMonitor) Check(now int64) bool {
	if !m.started || m.state == ConnectionDisconnected {
		return false
	}

	since := now - m.lastArrival
	if since > m.cfg.MsWithoutUpdateDisconnect {
		return m.transition(ConnectionDisconnected, "stalled")
	}
	if m.state == ConnectionStable && since > m.cfg.MsWithoutUpdateShowWarning {
		return m.transition(ConnectionUnstable, "no updates")
	}
	return false
}

func (m *HealthMonitor) transition(next ConnectionState, reason string) bool {
	if next == m.state {
		return false
	}
	m.logger.Info("connection state changed", "from", m.state, "to", next, "reason", reason)
	m.state = next
	return true
}

func (m *HealthMonitor) State() ConnectionState {
	return m.state
}

// Unstable reports whether the lag warning should be shown.
func (m *HealthMonitor) Unstable() bool {
	return m.state == ConnectionUnstable
}

// Ping is the most recent timestamp spacing, or the latency from the latest
// ping update if that came later.
func (m *HealthMonitor) Ping() uint64 {
	return m.ping
}

// SetPing records a server-reported latency.
func (m *HealthMonitor) SetPing(ms uint64) {
	m.ping = ms
}

// Window returns a copy of the current latency samples, oldest first.
func (m *HealthMonitor) Window() []int64 {
	return append([]int64(nil), m.window...)
}

// Reset returns the monitor to its initial Stable state for a new session.
func (m *HealthMonitor) Reset() {
	m.window = m.window[:0]
	m.lastTimestamp = 0
	m.lastArrival = 0
	m.started = false
	m.state = ConnectionStable
	m.ping = 0
}

func maxSample(s []int64) int64 {
	out := s[0]
	for _, v := range s[1:] {
		out = max(out, v)
	}
	return out
}

func average(s []int64) float64 {
	var sum int64
	for _, v := range s {
		sum += v
	}
	return float64(sum) / float64(len(s))
}
