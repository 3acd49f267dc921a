package config

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quasilyte/gdata"
)

const settingsKey = "netsync"

// ItemStore is the subset of *gdata.Manager used for saved settings.
type ItemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

// SavedSettings represents the user-tunable netsync values stored on disk
type SavedSettings struct {
	ServerAddr           string `json:"serverAddr,omitempty"`
	PlayoutDelayMs       int64  `json:"playoutDelayMs"`
	ShowWarningThreshold int64  `json:"showWarningThreshold"`
	StopWarningThreshold int64  `json:"stopWarningThreshold"`
}

// OpenStore opens the per-user gdata storage for the viewer.
func OpenStore(appName string) (ItemStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("open settings storage: %w", err)
	}
	return m, nil
}

// LoadSettings reads saved settings. It returns nil without error when
// nothing has been saved yet.
func LoadSettings(store ItemStore) (*SavedSettings, error) {
	data, err := store.LoadItem(settingsKey)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var s SavedSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &s, nil
}

// SaveSettings writes the current NetSync tuning to store.
func SaveSettings(store ItemStore) error {
	data, err := json.Marshal(CurrentSettings())
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := store.SaveItem(settingsKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// CurrentSettings captures the persisted subset of NetSync.
func CurrentSettings() *SavedSettings {
	return &SavedSettings{
		ServerAddr:           NetSync.ServerAddr,
		PlayoutDelayMs:       NetSync.PlayoutDelayMs,
		ShowWarningThreshold: NetSync.Health.ShowWarningThreshold,
		StopWarningThreshold: NetSync.Health.StopWarningThreshold,
	}
}

// ApplySavedSettings copies saved values into NetSync. Values that would break
// the warning hysteresis are ignored.
func ApplySavedSettings(s *SavedSettings) {
	if s == nil {
		return
	}
	if s.ServerAddr != "" {
		NetSync.ServerAddr = s.ServerAddr
	}
	if s.PlayoutDelayMs >= 0 {
		NetSync.PlayoutDelayMs = s.PlayoutDelayMs
	}
	if s.StopWarningThreshold > 0 && s.ShowWarningThreshold > s.StopWarningThreshold {
		NetSync.Health.ShowWarningThreshold = s.ShowWarningThreshold
		NetSync.Health.StopWarningThreshold = s.StopWarningThreshold
	} else {
		slog.Warn("ignoring saved warning thresholds",
			"show", s.ShowWarningThreshold, "stop", s.StopWarningThreshold)
	}
}
