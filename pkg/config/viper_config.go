package config

import (
	"strings"

	"github.com/spf13/viper"
)

// ViperConfig reads keys from a config file (yaml, toml, json or .env) with the
// environment taking precedence, so ODE_STORAGE_DIR in the environment overrides
// ode_storage_dir in the file.
type ViperConfig struct {
	keys
	v *viper.Viper
}

func NewViperConfig(path string) *ViperConfig {
	v := viper.New()
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	}

	c := &ViperConfig{v: v}
	c.keys = keys{lookup: c.lookup}
	return c
}

func (c *ViperConfig) lookup(key string) string {
	if val := c.v.GetString(key); val != "" {
		return val
	}

	return c.v.GetString(strings.ToLower(key))
}

func (c *ViperConfig) LoadFromPath(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *ViperConfig) Load() error {
	if c.v.ConfigFileUsed() == "" {
		return nil
	}

	return c.v.ReadInConfig()
}

// Set overrides a key, as flags do.
func (c *ViperConfig) Set(key, value string) {
	c.v.Set(key, value)
}
