package config

import (
	"fmt"
	"strings"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

func validate(c *Config) error {
	if !logLevels[strings.ToLower(strings.TrimSpace(c.App.LogLevel))] {
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", c.App.LogLevel)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path cannot be empty")
	}
	if strings.TrimSpace(c.Vault.Key) == "" {
		return fmt.Errorf("vault.key is required (file key or %s)", EnvVaultKey)
	}
	if c.Sync.IntervalMinutes < 0 {
		return fmt.Errorf("sync.interval_minutes must be >= 0")
	}
	if c.Sync.Parallel < 0 {
		return fmt.Errorf("sync.parallel must be >= 0")
	}
	if c.Sync.WindowDays <= 0 {
		return fmt.Errorf("sync.window_days must be > 0")
	}
	if strings.TrimSpace(c.Gateway.URL) == "" {
		return fmt.Errorf("gateway.url cannot be empty")
	}
	return nil
}
