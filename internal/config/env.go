package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCRIPTSENSE_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	name  string
	apply func(c *Config, val string) error
}

var envBindings = []envBinding{
	{"LOG_LEVEL", func(c *Config, v string) error { c.Logging.Level = v; return nil }},
	{"WORKSPACE_ROOT", func(c *Config, v string) error { c.Persistence.Root = v; return nil }},
	{"WORKSPACE", func(c *Config, v string) error { c.Persistence.Workspace = v; return nil }},
	{"CATALOG_URL", func(c *Config, v string) error { c.Catalog.URL = v; return nil }},
	{"CATALOG_PATH", func(c *Config, v string) error { c.Catalog.Path = v; return nil }},
	{"ACCEPT_KEY", func(c *Config, v string) error { c.Intellisense.AcceptKey = v; return nil }},
	{"MAX_SUGGESTIONS", func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		c.Intellisense.MaxSuggestions = n
		return nil
	}},
}

// ApplyEnv overrides settings from SCRIPTSENSE_* variables read through
// lookup. Empty values are treated as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	for _, b := range envBindings {
		key := EnvPrefix + b.name
		val, ok := lookup(key)
		if !ok {
			continue
		}
		if err := b.apply(c, val); err != nil {
			return fmt.Errorf("environment %s: %w", key, err)
		}
	}
	return nil
}
