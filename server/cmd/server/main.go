package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/server/core"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

func main() {
	envFile := flag.String("env", ".env", "Environment file with DEVSERVER_* overrides")
	addr := flag.String("addr", "", "Listen address (overrides DEVSERVER_ADDR)")
	tickRate := flag.Int("tickrate", 0, "Server tick rate (updates per second)")
	jitter := flag.Int("jitter", -1, "Max random delay per outbound frame in ms")
	bots := flag.Int("bots", -1, "Bots spawned with each new match")
	stats := flag.String("stats", "", "Serve runtime charts on this address")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := config.LoadEnv(*envFile); err != nil {
		slog.Error("bad environment", "err", err)
		os.Exit(1)
	}
	cfg := config.DevServer
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *tickRate > 0 {
		cfg.TickRate = *tickRate
	}
	if *jitter >= 0 {
		cfg.JitterMs = *jitter
	}
	if *bots >= 0 {
		cfg.StartingBots = *bots
	}

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			slog.Warn("sentry disabled", "err", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if *stats != "" {
		viewer.SetConfiguration(viewer.WithAddr(*stats))
		mgr := statsview.New()
		go mgr.Start()
		slog.Info("stats viewer enabled", "addr", *stats)
	}

	server := core.NewServer(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("shutting down server")
		server.Stop()
	}()

	slog.Info("starting dev server", "addr", cfg.Addr, "tick_rate", cfg.TickRate, "jitter_ms", cfg.JitterMs)
	if err := server.Start(cfg.Addr); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
