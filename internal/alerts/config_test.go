package alerts

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ALERTS_CONFIG", "")
	t.Setenv("ALERTS_WEBHOOK_URL", "")
	t.Setenv("ALERTS_POLL_INTERVAL", "")
	t.Setenv("ALERTS_LOW_BATTERY_PCT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Enabled() {
		t.Error("alerting enabled without webhook url")
	}
	if cfg.Interval() != time.Minute {
		t.Errorf("interval = %v, want 1m", cfg.Interval())
	}
	if cfg.LowBatteryPct != 20 {
		t.Errorf("low battery pct = %d, want 20", cfg.LowBatteryPct)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ALERTS_CONFIG", "")
	t.Setenv("ALERTS_WEBHOOK_URL", "https://chat.example/hook")
	t.Setenv("ALERTS_POLL_INTERVAL", "30s")
	t.Setenv("ALERTS_LOW_BATTERY_PCT", "35")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Enabled() {
		t.Error("alerting not enabled")
	}
	if cfg.Interval() != 30*time.Second {
		t.Errorf("interval = %v, want 30s", cfg.Interval())
	}
	if cfg.LowBatteryPct != 35 {
		t.Errorf("low battery pct = %d, want 35", cfg.LowBatteryPct)
	}
}

func TestLoadConfigYAMLOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.yaml")
	data := []byte("webhook_url: https://chat.example/yaml\npoll_interval: 2m\nlow_battery_pct: 40\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ALERTS_CONFIG", path)
	t.Setenv("ALERTS_WEBHOOK_URL", "https://chat.example/env")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.WebhookURL != "https://chat.example/yaml" {
		t.Errorf("webhook url = %q, want yaml value", cfg.WebhookURL)
	}
	if cfg.Interval() != 2*time.Minute {
		t.Errorf("interval = %v, want 2m", cfg.Interval())
	}
	if cfg.LowBatteryPct != 40 {
		t.Errorf("low battery pct = %d, want 40", cfg.LowBatteryPct)
	}
}

func TestLoadConfigBadIntervalFallsBack(t *testing.T) {
	t.Setenv("ALERTS_CONFIG", "")
	t.Setenv("ALERTS_POLL_INTERVAL", "not-a-duration")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Interval() != time.Minute {
		t.Errorf("interval = %v, want fallback 1m", cfg.Interval())
	}
}
