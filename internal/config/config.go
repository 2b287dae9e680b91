package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Database  DatabaseConfig  `yaml:"database"`
	Provider  ProviderConfig  `yaml:"provider"`
	Notify    NotifyConfig    `yaml:"notify"`
	Horoscope HoroscopeConfig `yaml:"horoscope"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	LogLevel  string          `yaml:"log_level"`
}

// TelegramConfig configures the bot transport.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProviderConfig configures the OpenRouter chat-completion collaborator.
type ProviderConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     string  `yaml:"timeout"`
}

// ParseTimeout returns the provider request timeout as time.Duration.
func (p ProviderConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// NotifyConfig configures the daily push scheduler.
type NotifyConfig struct {
	DefaultHour int    `yaml:"default_hour"`
	Interval    string `yaml:"interval"`
	Timezone    string `yaml:"timezone"`
}

// ParseInterval returns the scheduler tick interval as time.Duration.
func (n NotifyConfig) ParseInterval() time.Duration {
	d, err := time.ParseDuration(n.Interval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// Location returns the timezone used for the day/hour boundary.
func (n NotifyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(n.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// HoroscopeConfig selects where daily horoscope text comes from:
// "llm" uses the active model with the astrologer prompt, "feed" pulls
// a per-sign RSS feed.
type HoroscopeConfig struct {
	Source  string `yaml:"source"`
	FeedURL string `yaml:"feed_url"`
}

// MetricsConfig configures the prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./notibot.db"},
		Provider: ProviderConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Temperature: 0.2,
			MaxTokens:   400,
			Timeout:     "30s",
		},
		Notify: NotifyConfig{
			DefaultHour: 9,
			Interval:    "5m",
			Timezone:    "Local",
		},
		Horoscope: HoroscopeConfig{
			Source:  "llm",
			FeedURL: "https://www.horoscope.com/us/horoscopes/general/rss/horoscope-rss.aspx?sign=%s",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TOKEN"); v != "" && cfg.Telegram.Token == "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("NOTIBOT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("DB_PATH"); v != "" && cfg.Database.Path == Default().Database.Path {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("DEFAULT_NOTIFY_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			cfg.Notify.DefaultHour = h
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
}
