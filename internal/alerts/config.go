package alerts

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines alerting configuration.
type Config struct {
	WebhookURL    string `yaml:"webhook_url"`
	PollInterval  string `yaml:"poll_interval"`
	LowBatteryPct int    `yaml:"low_battery_pct"`
}

// LoadConfig loads config from yaml or env. The ALERTS_CONFIG file,
// when present, overrides env values.
func LoadConfig() (Config, error) {
	cfg := Config{
		WebhookURL:    os.Getenv("ALERTS_WEBHOOK_URL"),
		PollInterval:  getenvDefault("ALERTS_POLL_INTERVAL", "1m"),
		LowBatteryPct: getenvIntDefault("ALERTS_LOW_BATTERY_PCT", 20),
	}

	if path := os.Getenv("ALERTS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.PollInterval == "" {
		cfg.PollInterval = "1m"
	}
	if cfg.LowBatteryPct <= 0 || cfg.LowBatteryPct > 100 {
		cfg.LowBatteryPct = 20
	}
	return cfg, nil
}

// Interval parses the poll interval, falling back to one minute.
func (c Config) Interval() time.Duration {
	parsed, err := time.ParseDuration(c.PollInterval)
	if err != nil || parsed <= 0 {
		return time.Minute
	}
	return parsed
}

// Enabled reports whether alerting is configured.
func (c Config) Enabled() bool {
	return c.WebhookURL != ""
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
