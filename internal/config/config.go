package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Server   ServerConfig   `yaml:"server"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Market   MarketConfig   `yaml:"market"`
	Log      LogConfig      `yaml:"log"`
}

type ExchangeConfig struct {
	BaseURL           string        `yaml:"base_url"`
	TimeoutStr        string        `yaml:"timeout"`
	Timeout           time.Duration `yaml:"-"`
	RecentTradesLimit int           `yaml:"recent_trades_limit"`
}

type ServerConfig struct {
	Port               int           `yaml:"port"`
	ShutdownTimeoutStr string        `yaml:"shutdown_timeout"`
	ShutdownTimeout    time.Duration `yaml:"-"`
}

type RefreshConfig struct {
	IntervalStr string        `yaml:"interval"`
	Interval    time.Duration `yaml:"-"` // zero disables periodic refresh
	Symbols     []string      `yaml:"symbols"`
}

type MarketConfig struct {
	QuoteAsset      string `yaml:"quote_asset"`
	MaxTradesStored int    `yaml:"max_trades_stored"` // zero keeps every fetched trade
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			BaseURL:           "https://api.binance.com/api/v3",
			TimeoutStr:        "10s",
			RecentTradesLimit: 100,
		},
		Server: ServerConfig{
			Port:               8080,
			ShutdownTimeoutStr: "5s",
		},
		Refresh: RefreshConfig{
			IntervalStr: "0s",
		},
		Market: MarketConfig{
			QuoteAsset:      "USDT",
			MaxTradesStored: 10000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults. An empty path or
// a missing file yields the defaults. Environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETVIEW_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("MARKETVIEW_TIMEOUT"); v != "" {
		cfg.Exchange.TimeoutStr = v
	}
	if v := os.Getenv("MARKETVIEW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MARKETVIEW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// resolve parses durations and validates ranges
func (c *Config) resolve() error {
	var err error

	if c.Exchange.Timeout, err = time.ParseDuration(c.Exchange.TimeoutStr); err != nil {
		return fmt.Errorf("invalid exchange timeout: %w", err)
	}
	if c.Server.ShutdownTimeout, err = time.ParseDuration(c.Server.ShutdownTimeoutStr); err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if c.Refresh.IntervalStr == "" {
		c.Refresh.IntervalStr = "0s"
	}
	if c.Refresh.Interval, err = time.ParseDuration(c.Refresh.IntervalStr); err != nil {
		return fmt.Errorf("invalid refresh interval: %w", err)
	}

	if c.Exchange.BaseURL == "" {
		return errors.New("exchange base_url must not be empty")
	}
	if c.Exchange.Timeout <= 0 {
		return fmt.Errorf("exchange timeout must be positive, got %s", c.Exchange.Timeout)
	}
	if c.Exchange.RecentTradesLimit < 1 || c.Exchange.RecentTradesLimit > 1000 {
		return fmt.Errorf("recent_trades_limit must be between 1 and 1000, got %d", c.Exchange.RecentTradesLimit)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh interval must not be negative, got %s", c.Refresh.Interval)
	}
	if c.Market.MaxTradesStored < 0 {
		return fmt.Errorf("max_trades_stored must not be negative, got %d", c.Market.MaxTradesStored)
	}

	for i, symbol := range c.Refresh.Symbols {
		c.Refresh.Symbols[i] = strings.ToUpper(strings.TrimSpace(symbol))
	}
	c.Market.QuoteAsset = strings.ToUpper(strings.TrimSpace(c.Market.QuoteAsset))

	return nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
