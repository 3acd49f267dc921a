package config

import (
	"image/color"
	"time"
)

// BufferConfig bounds the client's snapshot history
type BufferConfig struct {
	Capacity    int   // snapshots kept
	RetentionMs int64 // age limit relative to the newest snapshot, 0 = count only
}

// HealthConfig contains the connection health thresholds. Values are in
// milliseconds of server-timestamp spacing unless noted.
type HealthConfig struct {
	SamplesToCheckWarning int // K: samples needed before the jitter check runs
	SamplesMaxLength      int // latency window length

	ShowWarningThreshold int64
	StopWarningThreshold int64

	// Local-clock timers since the last state update arrived
	MsWithoutUpdateShowWarning int64
	MsWithoutUpdateDisconnect  int64
}

// NetSyncConfig holds client-side synchronization settings
type NetSyncConfig struct {
	ServerAddr     string // host:port of the game server
	PlayoutDelayMs int64
	Buffer         BufferConfig
	Health         HealthConfig

	ReconnectBackoff    time.Duration // first retry delay after an abnormal close
	ReconnectBackoffMax time.Duration
	InboundQueueSize    int // raw frames buffered between reader and Tick
}

// DevServerConfig contains the local development server settings
type DevServerConfig struct {
	Addr          string
	TickRate      int           // state updates per second
	PingInterval  time.Duration // how often PING_UPDATE is sent
	JitterMs      int           // max random delay added to each broadcast, 0 = off
	ArenaRadius   float64
	ShrinkPerTick float64 // playable radius lost per tick
	MinRadius     float64
	StartingBots  int

	// Player tuning
	PlayerHealth int64
	PlayerSpeed  float64 // units per tick

	// Projectile tuning
	ProjectileSpeed  float64
	ProjectileDamage uint32
	ProjectileTicks  int64
	HitRadius        float64

	// Per-slot cooldowns in ms: basic, skill 1..3 share, ultimate
	Cooldowns [4]uint64

	ZoneDamage int64 // health lost per tick outside the playable radius
	SendQueue  int   // outbound frames buffered per client
}

// CameraConfig contains spectator camera behavior
type CameraConfig struct {
	RetargetDuration float32 // seconds to pan to a new target
	Zoom             float64 // world units per pixel
}

// HUDConfig contains the debug viewer overlay settings
type HUDConfig struct {
	FontSize        float64
	KillFeedEntries int           // lines shown
	KillFeedTTL     time.Duration // how long each line stays
	Margin          float64

	BackgroundColor color.RGBA
	TextColor       color.RGBA
	WarningColor    color.RGBA
	PlayerColor     color.RGBA
	LocalColor      color.RGBA
	DeadColor       color.RGBA
	ProjectileColor color.RGBA
	LootColor       color.RGBA
	ZoneColor       color.RGBA
}

// Config holds general viewer configuration
type Config struct {
	Width  int
	Height int
	Title  string
}

// Global configuration instances
var C *Config
var NetSync NetSyncConfig
var DevServer DevServerConfig
var Camera CameraConfig
var HUD HUDConfig

// Shared RGBA color constants
var (
	White        = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow       = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Orange       = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	Red          = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green        = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	LightGreen   = color.RGBA{R: 100, G: 255, B: 100, A: 255}
	Purple       = color.RGBA{R: 128, G: 0, B: 255, A: 255}
	Gray         = color.RGBA{R: 110, G: 110, B: 110, A: 255}
	BlackOverlay = color.RGBA{R: 0, G: 0, B: 0, A: 180}
	LightBlue    = color.RGBA{R: 100, G: 180, B: 255, A: 255}
	DarkBlue     = color.RGBA{R: 20, G: 30, B: 50, A: 255}
)

func init() {
	C = &Config{
		Width:  960,
		Height: 540,
		Title:  "mirra netsync viewer",
	}

	NetSync = NetSyncConfig{
		ServerAddr:     "localhost:4000",
		PlayoutDelayMs: 100,
		Buffer: BufferConfig{
			Capacity:    32,
			RetentionMs: 1000,
		},
		Health: HealthConfig{
			SamplesToCheckWarning:      5,
			SamplesMaxLength:           30,
			ShowWarningThreshold:       75,
			StopWarningThreshold:       40,
			MsWithoutUpdateShowWarning: 3000,
			MsWithoutUpdateDisconnect:  10000,
		},
		ReconnectBackoff:    500 * time.Millisecond,
		ReconnectBackoffMax: 8 * time.Second,
		InboundQueueSize:    256,
	}

	DevServer = DevServerConfig{
		Addr:          ":4000",
		TickRate:      30,
		PingInterval:  time.Second,
		ArenaRadius:   5000,
		ShrinkPerTick: 1.5,
		MinRadius:     600,
		StartingBots:  0,

		PlayerHealth: 100,
		PlayerSpeed:  25,

		ProjectileSpeed:  60,
		ProjectileDamage: 10,
		ProjectileTicks:  40,
		HitRadius:        60,

		Cooldowns: [4]uint64{300, 2000, 4000, 10000},

		ZoneDamage: 1,
		SendQueue:  64,
	}

	Camera = CameraConfig{
		RetargetDuration: 0.6,
		Zoom:             10,
	}

	HUD = HUDConfig{
		FontSize:        14,
		KillFeedEntries: 5,
		KillFeedTTL:     3 * time.Second, // same as the kill feed item lifetime
		Margin:          8,

		BackgroundColor: DarkBlue,
		TextColor:       White,
		WarningColor:    Orange,
		PlayerColor:     LightBlue,
		LocalColor:      LightGreen,
		DeadColor:       Gray,
		ProjectileColor: Yellow,
		LootColor:       Purple,
		ZoneColor:       Red,
	}
}
