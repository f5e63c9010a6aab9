package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// FromEnv applies SYMBIO_* variables over base. Unparseable values are
// ignored.
func FromEnv(base *Config) *Config {
	cfg := *base
	if v, ok := getEnvString("SYMBIO_BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := getEnvString("SYMBIO_PROXY"); ok {
		cfg.Proxy = v
	}
	if v, ok := getEnvDuration("SYMBIO_TIMEOUT"); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := getEnvString("SYMBIO_STATE_PATH"); ok {
		cfg.StatePath = v
	}
	if v, ok := getEnvString("SYMBIO_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("SYMBIO_WALLET_CURRENCY"); ok {
		cfg.Wallet.Currency = strings.ToUpper(v)
	}
	if v, ok := getEnvDuration("SYMBIO_POLL_INTERVAL"); ok && v >= 0 {
		cfg.Poll.Interval = v
	}
	if v, ok := getEnvInt("SYMBIO_POLL_BUFFER"); ok && v > 0 {
		cfg.Poll.Buffer = v
	}
	if v, ok := getEnvString("SYMBIO_METRICS_TEXTFILE"); ok {
		cfg.Metrics.Textfile = v
	}
	return &cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// getEnvDuration accepts Go durations and bare seconds.
func getEnvDuration(name string) (time.Duration, bool) {
	raw, ok := getEnvString(name)
	if !ok {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}
