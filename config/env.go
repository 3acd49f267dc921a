package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv reads the given .env files (".env" when none are named) into the
// process environment and applies NETSYNC_* and DEVSERVER_* overrides to the
// package configuration. A missing file is not an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env: %w", err)
	}
	return ApplyEnv()
}

// ApplyEnv applies overrides from the current environment.
func ApplyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	i64 := func(key string, dst *int64) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
	num := func(key string, dst *int) {
		n := int64(*dst)
		i64(key, &n)
		*dst = int(n)
	}

	str("NETSYNC_SERVER_ADDR", &NetSync.ServerAddr)
	i64("NETSYNC_PLAYOUT_DELAY_MS", &NetSync.PlayoutDelayMs)
	num("NETSYNC_BUFFER_CAPACITY", &NetSync.Buffer.Capacity)
	i64("NETSYNC_BUFFER_RETENTION_MS", &NetSync.Buffer.RetentionMs)
	num("NETSYNC_SAMPLES_TO_CHECK", &NetSync.Health.SamplesToCheckWarning)
	num("NETSYNC_SAMPLES_MAX", &NetSync.Health.SamplesMaxLength)
	i64("NETSYNC_SHOW_WARNING_MS", &NetSync.Health.ShowWarningThreshold)
	i64("NETSYNC_STOP_WARNING_MS", &NetSync.Health.StopWarningThreshold)
	i64("NETSYNC_WARN_AFTER_MS", &NetSync.Health.MsWithoutUpdateShowWarning)
	i64("NETSYNC_DISCONNECT_AFTER_MS", &NetSync.Health.MsWithoutUpdateDisconnect)

	str("DEVSERVER_ADDR", &DevServer.Addr)
	num("DEVSERVER_TICK_RATE", &DevServer.TickRate)
	num("DEVSERVER_JITTER_MS", &DevServer.JitterMs)
	num("DEVSERVER_BOTS", &DevServer.StartingBots)

	return errors.Join(errs...)
}
