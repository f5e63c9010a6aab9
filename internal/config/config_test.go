package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "BTC", cfg.Wallet.Currency)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 64, cfg.Poll.Buffer)
	assert.Equal(t, ".symbio/state.db", cfg.StatePath)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "missing base url", modify: func(c *Config) { c.BaseURL = "" }, wantErr: true},
		{name: "relative base url", modify: func(c *Config) { c.BaseURL = "api.local" }, wantErr: true},
		{name: "socks proxy", modify: func(c *Config) { c.Proxy = "socks5://127.0.0.1:9050" }},
		{name: "http proxy", modify: func(c *Config) { c.Proxy = "http://localhost:4444" }},
		{name: "ftp proxy", modify: func(c *Config) { c.Proxy = "ftp://localhost:21" }, wantErr: true},
		{name: "unknown log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "blank currency", modify: func(c *Config) { c.Wallet.Currency = " " }, wantErr: true},
		{name: "zero poll buffer", modify: func(c *Config) { c.Poll.Buffer = 0 }, wantErr: true},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbio.yaml")
	content := `
base_url: "http://market.i2p"
proxy: "http://localhost:4444"
timeout: 90s
state_path: "/tmp/symbio.db"
wallet:
  currency: XMR
poll:
  interval: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://market.i2p", cfg.BaseURL)
	assert.Equal(t, "http://localhost:4444", cfg.Proxy)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "XMR", cfg.Wallet.Currency)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval)
	// Unset keys keep their defaults.
	assert.Equal(t, 64, cfg.Poll.Buffer)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{BaseURL: "http://other:1", Poll: PollConfig{Buffer: 8}})
	assert.Equal(t, "http://other:1", cfg.BaseURL)
	assert.Equal(t, 8, cfg.Poll.Buffer)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	cfg.Merge(nil)
	assert.Equal(t, "http://other:1", cfg.BaseURL)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SYMBIO_BASE_URL", "http://env:9")
	t.Setenv("SYMBIO_TIMEOUT", "15")
	t.Setenv("SYMBIO_WALLET_CURRENCY", "ltc")
	t.Setenv("SYMBIO_POLL_INTERVAL", "750ms")
	t.Setenv("SYMBIO_POLL_BUFFER", "nope")
	t.Setenv("SYMBIO_METRICS_TEXTFILE", "/tmp/symbio.prom")

	base := DefaultConfig()
	cfg := FromEnv(base)
	assert.Equal(t, "http://env:9", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "LTC", cfg.Wallet.Currency)
	assert.Equal(t, 750*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 64, cfg.Poll.Buffer)
	assert.Equal(t, "/tmp/symbio.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "http://localhost:8080", base.BaseURL, "base must not change")
}
