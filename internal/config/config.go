package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Sources struct {
		BinanceBaseURL   string `yaml:"binance_base_url"`
		CoinGeckoBaseURL string `yaml:"coingecko_base_url"`
	} `yaml:"sources"`
	Cache struct {
		Path       string `yaml:"path"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	ResolveTimeoutSeconds int    `yaml:"resolve_timeout_seconds"`
	Proxy                 string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

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
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Sources.BinanceBaseURL = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.Sources.CoinGeckoBaseURL = v
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Sources.BinanceBaseURL == "" {
		cfg.Sources.BinanceBaseURL = "https://api.binance.com"
	}
	if cfg.Sources.CoinGeckoBaseURL == "" {
		cfg.Sources.CoinGeckoBaseURL = "https://api.coingecko.com"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "data/prices_cache.json"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 180
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/walletwatch.db"
	}
	if cfg.ResolveTimeoutSeconds == 0 {
		cfg.ResolveTimeoutSeconds = 60
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative")
	}
	return nil
}
