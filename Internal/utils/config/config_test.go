package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Defaults.Market != "BTC/USD" || cfg.Defaults.Timeframe != "1h" || cfg.Defaults.PeriodDays != 90 {
		t.Errorf("Defaults = %+v", cfg.Defaults)
	}
	// Persistence defaults on; config.yaml is the opt-out, not the opt-in.
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
	if cfg.History.Limit != 50 {
		t.Errorf("History.Limit = %d, want 50", cfg.History.Limit)
	}
}

func TestConfig_HistoryOptOut(t *testing.T) {
	cfg := DefaultConfig()
	raw := "history:\n  enabled: false\n  limit: 25\n"
	if err := yaml.Unmarshal([]byte(raw), cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.History.Enabled {
		t.Error("yaml opt-out must disable history")
	}
	if cfg.History.Limit != 25 {
		t.Errorf("History.Limit = %d, want 25", cfg.History.Limit)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default preserved", cfg.Server.Addr)
	}
}
