// Package config loads the YAML configuration file, fills defaults for keys
// the file leaves out, and validates the result.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvVaultKey overrides vault.key so the secret can stay out of the file.
const EnvVaultKey = "TRADETRACK_VAULT_KEY"

func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config: path is empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if key := os.Getenv(EnvVaultKey); key != "" {
		cfg.Vault.Key = key
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals the merged settings and applies defaults only to keys
// the file never mentions, so an explicit zero in the file survives.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	present := make(keySet)
	flattenConfigKeys("", v.AllSettings(), present)
	cfg.applyDefaults(present)
	return &cfg, nil
}

func flattenConfigKeys(prefix string, node any, dest keySet) {
	nested, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			dest.mark(prefix)
		}
		return
	}
	for k, child := range nested {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		flattenConfigKeys(key, child, dest)
	}
}
