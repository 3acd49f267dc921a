package core

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// GameLoop drives the server's fixed-rate simulation.
type GameLoop struct {
	server       *Server
	tickRate     int
	pingInterval time.Duration
	running      bool
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewGameLoop(server *Server, tickRate int, pingInterval time.Duration) *GameLoop {
	if tickRate <= 0 {
		tickRate = 30
	}
	return &GameLoop{
		server:       server,
		tickRate:     tickRate,
		pingInterval: pingInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	defer sentry.Recover()
	defer close(g.doneChan)

	g.running = true
	ticker := time.NewTicker(g.TickDuration())
	defer ticker.Stop()

	var pingC <-chan time.Time
	if g.pingInterval > 0 {
		pinger := time.NewTicker(g.pingInterval)
		defer pinger.Stop()
		pingC = pinger.C
	}

	slog.Info("game loop started", "tick_rate", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.running = false
			slog.Info("game loop stopped")
			return
		case <-ticker.C:
			g.tick()
		case <-pingC:
			g.server.broadcastPing()
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
	<-g.doneChan
}

// TickDuration is the simulated time between two ticks.
func (g *GameLoop) TickDuration() time.Duration {
	return time.Second / time.Duration(g.tickRate)
}

func (g *GameLoop) tick() {
	g.server.ProcessCommands()
	g.server.step()
}
