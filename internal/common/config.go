// Package common provides shared utilities for the reporter
package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the reporter
type Config struct {
	Environment string          `toml:"environment"`
	Schedule    string          `toml:"schedule"` // cron expression; empty = run once and exit
	Portfolio   PortfolioConfig `toml:"portfolio"`
	Reports     ReportsConfig   `toml:"reports"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
}

// PortfolioConfig holds portfolio file configuration
type PortfolioConfig struct {
	Path string `toml:"path"`
}

// ReportsConfig holds report output configuration
type ReportsConfig struct {
	Dir string `toml:"dir"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	MOEX     MOEXConfig     `toml:"moex"`
	Telegram TelegramConfig `toml:"telegram"`
}

// MOEXConfig holds MOEX ISS API configuration
type MOEXConfig struct {
	BaseURL    string `toml:"base_url"`
	Board      string `toml:"board"`
	Timeout    string `toml:"timeout"`
	RateLimit  int    `toml:"rate_limit"` // requests per second
	Retries    int    `toml:"retries"`    // total attempts per symbol
	RetryPause string `toml:"retry_pause"`
	CacheTTL   string `toml:"cache_ttl"`
}

// GetTimeout parses and returns the HTTP timeout duration
func (c *MOEXConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetRetryPause parses and returns the pause between retry attempts
func (c *MOEXConfig) GetRetryPause() time.Duration {
	d, err := time.ParseDuration(c.RetryPause)
	if err != nil {
		return 1 * time.Second
	}
	return d
}

// GetCacheTTL parses and returns the quote cache TTL
func (c *MOEXConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// TelegramConfig holds Telegram Bot API configuration
type TelegramConfig struct {
	BaseURL  string `toml:"base_url"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
	Timeout  string `toml:"timeout"`
}

// GetTimeout parses and returns the HTTP timeout duration
func (c *TelegramConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// Enabled returns true if both bot token and chat id are configured.
// Missing credentials disable notification only, never the whole run.
func (c *TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Portfolio: PortfolioConfig{
			Path: "data/portfolio.json",
		},
		Reports: ReportsConfig{
			Dir: "reports",
		},
		Clients: ClientsConfig{
			MOEX: MOEXConfig{
				BaseURL:    "https://iss.moex.com/iss",
				Board:      "TQBR",
				Timeout:    "10s",
				RateLimit:  10,
				Retries:    3,
				RetryPause: "1s",
				CacheTTL:   "300s",
			},
			Telegram: TelegramConfig{
				BaseURL: "https://api.telegram.org",
				Timeout: "15s",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("REPORTER_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("REPORTER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("REPORTER_PORTFOLIO_PATH"); path != "" {
		config.Portfolio.Path = path
	}

	if dir := os.Getenv("REPORTER_REPORTS_DIR"); dir != "" {
		config.Reports.Dir = dir
	}

	if schedule := os.Getenv("REPORTER_SCHEDULE"); schedule != "" {
		config.Schedule = schedule
	}

	if url := os.Getenv("REPORTER_MOEX_BASE_URL"); url != "" {
		config.Clients.MOEX.BaseURL = url
	}

	// Telegram credentials are unprefixed so existing CI secrets work as-is.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		config.Clients.Telegram.BotToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		config.Clients.Telegram.ChatID = chatID
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
