package config

import "strings"

const (
	defaultAppEnv       = "dev"
	defaultAppLogLevel  = "info"
	defaultAppHTTPAddr  = ":8000"
	defaultAppLogPath   = "data/logs/tradetrack.log"
	defaultStorePath    = "data/tradetrack.db"
	defaultSyncInterval = 15
	defaultSyncParallel = 4
	defaultSyncTimeout  = 30
	defaultSyncPage     = 500
	defaultSyncWindow   = 30
	defaultGatewayURL   = "http://localhost:3001"
	defaultGatewayTO    = 30
)

func (c *Config) applyDefaults(keys keySet) {
	defaultString(keys, "app.env", &c.App.Env, defaultAppEnv)
	defaultString(keys, "app.log_level", &c.App.LogLevel, defaultAppLogLevel)
	defaultString(keys, "app.http_addr", &c.App.HTTPAddr, defaultAppHTTPAddr)
	defaultString(keys, "app.log_path", &c.App.LogPath, defaultAppLogPath)

	defaultString(keys, "store.path", &c.Store.Path, defaultStorePath)

	defaultInt(keys, "sync.interval_minutes", &c.Sync.IntervalMinutes, defaultSyncInterval)
	defaultInt(keys, "sync.parallel", &c.Sync.Parallel, defaultSyncParallel)
	defaultInt(keys, "sync.fetch_timeout_seconds", &c.Sync.FetchTimeoutSeconds, defaultSyncTimeout)
	defaultInt(keys, "sync.page_limit", &c.Sync.PageLimit, defaultSyncPage)
	defaultInt(keys, "sync.window_days", &c.Sync.WindowDays, defaultSyncWindow)

	defaultString(keys, "gateway.url", &c.Gateway.URL, defaultGatewayURL)
	defaultInt(keys, "gateway.timeout_seconds", &c.Gateway.TimeoutSeconds, defaultGatewayTO)
}

// defaultString fills target unless the file set the key or the field
// already holds a non-blank value.
func defaultString(keys keySet, key string, target *string, def string) {
	if keys.isSet(key) || strings.TrimSpace(*target) != "" {
		return
	}
	*target = def
}

func defaultInt(keys keySet, key string, target *int, def int) {
	if keys.isSet(key) || *target != 0 {
		return
	}
	*target = def
}
