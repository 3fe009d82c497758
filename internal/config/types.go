package config

import (
	"strings"
	"time"
)

type Config struct {
	App     AppConfig     `toml:"app"`
	Store   StoreConfig   `toml:"store"`
	Vault   VaultConfig   `toml:"vault"`
	Sync    SyncConfig    `toml:"sync"`
	Gateway GatewayConfig `toml:"gateway"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `toml:"path"`
}

type VaultConfig struct {
	// Key is the credential encryption secret: either base64 of 32 raw
	// bytes or a passphrase. Usually injected via TRADETRACK_VAULT_KEY.
	Key string `toml:"key"`
}

type SyncConfig struct {
	IntervalMinutes     int `toml:"interval_minutes"`
	Parallel            int `toml:"parallel"`
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds"`
	PageLimit           int `toml:"page_limit"`
	WindowDays          int `toml:"window_days"`
}

func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

func (s SyncConfig) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSeconds) * time.Second
}

// GatewayConfig points at the ccxt gateway sidecar that fronts every venue
// without a native adapter.
type GatewayConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Testnet        bool   `toml:"testnet"`
}

func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// keySet tracks which field paths the config file set explicitly, so
// defaults never clobber a deliberate zero value.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}
