package config

import (
	"fmt"
	"sync"
)

// MapConfig is a fixed in-memory config, mostly for tests.
type MapConfig struct {
	keys
	configValues sync.Map
}

func NewMapConfig(entries map[string]string) *MapConfig {
	c := &MapConfig{}
	c.keys = keys{lookup: c.lookup}

	for key, entry := range entries {
		c.configValues.Store(key, entry)
	}

	return c
}

func (c *MapConfig) lookup(key string) string {
	v, ok := c.configValues.Load(key)
	if !ok {
		return ""
	}

	s, _ := v.(string)
	return s
}

func (c *MapConfig) LoadFromPath(_ string) error {
	return fmt.Errorf("LoadFromPath not supported for MapConfig")
}

func (c *MapConfig) Load() error {
	return nil
}
