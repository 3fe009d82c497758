package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
vault:
  key: test-secret
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8000", cfg.App.HTTPAddr)
	assert.Equal(t, "data/tradetrack.db", cfg.Store.Path)
	assert.Equal(t, 15*time.Minute, cfg.Sync.Interval())
	assert.Equal(t, 4, cfg.Sync.Parallel)
	assert.Equal(t, 500, cfg.Sync.PageLimit)
	assert.Equal(t, 30, cfg.Sync.WindowDays)
	assert.Equal(t, "http://localhost:3001", cfg.Gateway.URL)
}

func TestLoadExplicitZeroSurvivesDefaults(t *testing.T) {
	path := writeConfig(t, `
vault:
  key: test-secret
sync:
  interval_minutes: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	// 0 disables the scheduler; the default must not resurrect it.
	assert.Equal(t, 0, cfg.Sync.IntervalMinutes)
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, `
app:
  log_level: shouty
vault:
  key: test-secret
`)
	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfig(t, `app: {}`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault.key")
}

func TestVaultKeyFromEnv(t *testing.T) {
	t.Setenv(EnvVaultKey, "from-env")
	path := writeConfig(t, `
vault:
  key: from-file
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Vault.Key)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	_, err = Load("")
	assert.Error(t, err)
}
