package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected missing config to be fine, got %v", err)
	}
	if cfg.Practice.Words != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[practice]
lang = "en"
words = 30

[tracking]
enabled = true
look-down-threshold = 12.5
smoothing = 0.4
cooldown-ms = 1500
flash = false
xp-penalty = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Lang == nil || *cfg.Practice.Lang != "en" {
		t.Fatalf("expected lang en, got %+v", cfg.Practice)
	}
	if cfg.Tracking.PitchThreshold == nil || *cfg.Tracking.PitchThreshold != 12.5 {
		t.Fatalf("expected look-down-threshold 12.5, got %+v", cfg.Tracking)
	}
	if cfg.Tracking.CooldownMs == nil || *cfg.Tracking.CooldownMs != 1500 {
		t.Fatalf("expected cooldown 1500, got %+v", cfg.Tracking)
	}
	if cfg.Tracking.ShowFlash == nil || *cfg.Tracking.ShowFlash {
		t.Fatalf("expected flash disabled, got %+v", cfg.Tracking)
	}
	if cfg.Tracking.XPPenalty == nil || *cfg.Tracking.XPPenalty != 5 {
		t.Fatalf("expected xp-penalty carried, got %+v", cfg.Tracking)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice\nbroken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}
