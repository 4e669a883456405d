package config

import (
	"strconv"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

type Configer interface {
	LoadFromPath(path string) error
	Load() error
	GetKey(key string) string
	MustGetKey(key string) string
	GetKeyWithDefault(key, defaultValue string) string
	GetIntKey(key string) int
	MustGetIntKey(key string) int
	GetIntKeyWithDefault(key string, defaultValue int) int
	GetBytesKeyWithDefault(key string, defaultValue uint64) uint64
}

// keys implements the typed accessors of Configer on top of a raw lookup so each
// config source only has to say how it finds a string value.
type keys struct {
	lookup func(key string) string
}

func (k keys) GetKey(key string) string {
	return k.lookup(key)
}

func (k keys) MustGetKey(key string) string {
	val := k.lookup(key)
	if val == "" {
		log.Fatalf("No such required config key: '%s'", key)
	}

	return val
}

func (k keys) GetKeyWithDefault(key, defaultValue string) string {
	if val := k.lookup(key); val != "" {
		return val
	}

	return defaultValue
}

func (k keys) GetIntKey(key string) int {
	return k.GetIntKeyWithDefault(key, 0)
}

func (k keys) MustGetIntKey(key string) int {
	intVal, err := strconv.Atoi(k.lookup(key))
	if err != nil {
		log.Fatalf("Required config key either doesn't exist or isn't an int: '%s': %s", key, err)
	}

	return intVal
}

func (k keys) GetIntKeyWithDefault(key string, defaultValue int) int {
	intVal, err := strconv.Atoi(k.lookup(key))
	if err != nil {
		return defaultValue
	}

	return intVal
}

// GetBytesKeyWithDefault reads a size such as "10MB" or "512KiB". Unset or
// unparseable values yield defaultValue; an unparseable value is also logged.
func (k keys) GetBytesKeyWithDefault(key string, defaultValue uint64) uint64 {
	val := k.lookup(key)
	if val == "" {
		return defaultValue
	}

	n, err := humanize.ParseBytes(val)
	if err != nil {
		log.Warnf("Config key '%s' is not a size (%s), using %s", key, err, humanize.Bytes(defaultValue))
		return defaultValue
	}

	return n
}
