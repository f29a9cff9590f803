// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Tracking TrackingConfig `toml:"tracking"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lang     *string  `toml:"lang"`
	Words    *int     `toml:"words"`
	CapsPct  *float64 `toml:"caps"`
	PunctPct *float64 `toml:"punct"`
	PunctSet *string  `toml:"punct-set"`
}

// TrackingConfig maps gaze-tracking and penalty settings.
type TrackingConfig struct {
	Enabled         *bool    `toml:"enabled"`
	ReplayFile      *string  `toml:"replay-file"`
	PitchThreshold  *float64 `toml:"look-down-threshold"`
	GazeThreshold   *float64 `toml:"gaze-threshold"`
	SmoothingFactor *float64 `toml:"smoothing"`
	CooldownMs      *int     `toml:"cooldown-ms"`
	ShowFlash       *bool    `toml:"flash"`
	PlaySound       *bool    `toml:"sound"`

	// Retained for compatibility with older configs; not applied.
	XPPenalty *int `toml:"xp-penalty"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
