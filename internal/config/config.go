// Package config loads client settings from YAML with SYMBIO_* environment
// overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// BaseURL is the marketplace server root.
	BaseURL string `yaml:"base_url"`
	// Proxy routes all traffic; http, https and socks5 schemes are accepted.
	Proxy   string        `yaml:"proxy"`
	Timeout time.Duration `yaml:"timeout"`
	// StatePath is the SQLite file holding the token and read marks. Empty
	// keeps everything in memory.
	StatePath string        `yaml:"state_path"`
	LogLevel  string        `yaml:"log_level"`
	Wallet    WalletConfig  `yaml:"wallet"`
	Poll      PollConfig    `yaml:"poll"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

type WalletConfig struct {
	Currency string `yaml:"currency"`
}

type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	Buffer   int           `yaml:"buffer"`
}

type MetricsConfig struct {
	// Textfile receives transport metrics in Prometheus text format on exit.
	Textfile string `yaml:"textfile"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://localhost:8080",
		Timeout:   30 * time.Second,
		StatePath: ".symbio/state.db",
		LogLevel:  "info",
		Wallet:    WalletConfig{Currency: "BTC"},
		Poll:      PollConfig{Interval: 5 * time.Second, Buffer: 64},
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute url", c.BaseURL)
	}
	if c.Proxy != "" {
		p, err := url.Parse(c.Proxy)
		if err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
		switch p.Scheme {
		case "http", "https", "socks5", "socks5h":
		default:
			return fmt.Errorf("proxy scheme %q is not supported", p.Scheme)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if strings.TrimSpace(c.Wallet.Currency) == "" {
		return fmt.Errorf("wallet.currency is required")
	}
	if c.Poll.Interval < 0 {
		return fmt.Errorf("poll.interval must not be negative")
	}
	if c.Poll.Buffer <= 0 {
		return fmt.Errorf("poll.buffer must be positive")
	}
	return nil
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Merge copies the non-zero fields of other over c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.Proxy != "" {
		c.Proxy = other.Proxy
	}
	if other.Timeout != 0 {
		c.Timeout = other.Timeout
	}
	if other.StatePath != "" {
		c.StatePath = other.StatePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Wallet.Currency != "" {
		c.Wallet.Currency = other.Wallet.Currency
	}
	if other.Poll.Interval != 0 {
		c.Poll.Interval = other.Poll.Interval
	}
	if other.Poll.Buffer != 0 {
		c.Poll.Buffer = other.Poll.Buffer
	}
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}
