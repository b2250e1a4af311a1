package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	Cache    struct {
		Freshness   time.Duration `yaml:"freshness"`
		AcceptStale bool          `yaml:"accept_stale"`
		Backend     string        `yaml:"backend"`
		SQLitePath  string        `yaml:"sqlite_path"`
		Redis       struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Provider struct {
		Name    string `yaml:"name"`
		Range   string `yaml:"range"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		CSVDir  string `yaml:"csv_dir"`
	} `yaml:"provider"`
	Schedule struct {
		RefreshCron string   `yaml:"refresh_cron"`
		Symbols     []string `yaml:"symbols"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Set before decoding so an explicit zero ("always refetch") survives.
	cfg.Cache.Freshness = 24 * time.Hour

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("CACHE_FRESHNESS"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CACHE_FRESHNESS: %w", err)
		}
		cfg.Cache.Freshness = d
	}
	if v := os.Getenv("CACHE_ACCEPT_STALE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CACHE_ACCEPT_STALE: %w", err)
		}
		cfg.Cache.AcceptStale = b
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}

	// Defaults
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = "localhost:6379"
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "yahoo"
		if cfg.Provider.BaseURL != "" {
			cfg.Provider.Name = "rest"
		}
	}
	if cfg.Provider.Range == "" {
		cfg.Provider.Range = "max"
	}
	if cfg.Provider.CSVDir == "" {
		cfg.Provider.CSVDir = cfg.DataDir
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 22 * * 1-5"
	}

	return cfg, nil
}

// Validate checks field values and their combinations.
func (c *Config) Validate() error {
	if c.Cache.Freshness < 0 {
		return fmt.Errorf("cache.freshness must not be negative")
	}
	switch c.Cache.Backend {
	case "file", "sqlite", "redis", "memory", "none":
	default:
		return fmt.Errorf("cache.backend %q is not one of file, sqlite, redis, memory, none", c.Cache.Backend)
	}
	switch c.Provider.Name {
	case "yahoo", "html", "csv", "mock":
	case "rest":
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("provider.name %q is not one of yahoo, html, rest, csv, mock", c.Provider.Name)
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
