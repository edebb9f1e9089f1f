package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/scriptsense/internal/logging"
)

// FileName is the config file looked up in the working directory.
const FileName = "scriptsense.toml"

// IntellisenseConfig controls the suggestion popup.
type IntellisenseConfig struct {
	// Enabled turns suggestions on.
	Enabled bool `toml:"enabled"`

	// MaxSuggestions caps the number of suggestions shown.
	MaxSuggestions int `toml:"max_suggestions"`

	// AcceptKey is "Tab" or "Enter".
	AcceptKey string `toml:"accept_key"`

	// CompactMode shows fewer popup rows.
	CompactMode bool `toml:"compact_mode"`
}

// DiagnosticsConfig controls syntax markers.
type DiagnosticsConfig struct {
	// ShowMarkers turns markers on.
	ShowMarkers bool `toml:"show_markers"`

	// Language is the document language that gets analyzed.
	Language string `toml:"language"`

	// Warnings enables the style heuristics.
	Warnings bool `toml:"warnings"`
}

// PersistenceConfig controls where documents are stored.
type PersistenceConfig struct {
	// Root is the directory holding every workspace.
	Root string `toml:"root"`

	// Workspace is the workspace id.
	Workspace string `toml:"workspace"`

	// DebounceMS delays writes after an edit.
	DebounceMS int `toml:"debounce_ms"`
}

// CatalogConfig selects the symbol catalog sources.
type CatalogConfig struct {
	// Builtin includes the symbols of the embedded Lua runtime.
	Builtin bool `toml:"builtin"`

	// Path is a YAML or JSON catalog file.
	Path string `toml:"path"`

	// URL is an HTTP endpoint serving the catalog.
	URL string `toml:"url"`

	// TimeoutMS bounds the HTTP fetch.
	TimeoutMS int `toml:"timeout_ms"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level"`
}

// Config holds every setting.
type Config struct {
	Intellisense IntellisenseConfig `toml:"intellisense"`
	Diagnostics  DiagnosticsConfig  `toml:"diagnostics"`
	Persistence  PersistenceConfig  `toml:"persistence"`
	Catalog      CatalogConfig      `toml:"catalog"`
	Logging      LoggingConfig      `toml:"logging"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Intellisense: IntellisenseConfig{
			Enabled:        true,
			MaxSuggestions: 5,
			AcceptKey:      "Tab",
		},
		Diagnostics: DiagnosticsConfig{
			ShowMarkers: true,
			Language:    "lua",
			Warnings:    true,
		},
		Persistence: PersistenceConfig{
			Root:       defaultRoot(),
			Workspace:  "default",
			DebounceMS: 300,
		},
		Catalog: CatalogConfig{
			Builtin:   true,
			TimeoutMS: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultRoot() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "scriptsense", "workspaces")
	}
	return filepath.Join(".scriptsense", "workspaces")
}

// Load reads path on top of the defaults. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(path, data)
}

// LoadFromReader reads TOML from r on top of the defaults.
func LoadFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return parse("<reader>", data)
}

func parse(source string, data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			pe.Message = sme.String()
		}
		return Config{}, pe
	}
	return cfg, nil
}

// Marshal encodes the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.Intellisense.MaxSuggestions < 1 {
		return &ValidationError{Path: "intellisense.max_suggestions", Message: "must be at least 1", Value: c.Intellisense.MaxSuggestions}
	}
	switch c.Intellisense.AcceptKey {
	case "Tab", "Enter":
	default:
		return &ValidationError{Path: "intellisense.accept_key", Message: `must be "Tab" or "Enter"`, Value: c.Intellisense.AcceptKey}
	}
	if c.Diagnostics.Language == "" {
		return &ValidationError{Path: "diagnostics.language", Message: "must not be empty", Value: c.Diagnostics.Language}
	}
	if c.Persistence.Root == "" {
		return &ValidationError{Path: "persistence.root", Message: "must not be empty", Value: c.Persistence.Root}
	}
	if c.Persistence.Workspace == "" || filepath.Base(c.Persistence.Workspace) != c.Persistence.Workspace {
		return &ValidationError{Path: "persistence.workspace", Message: "must be a plain directory name", Value: c.Persistence.Workspace}
	}
	if c.Persistence.DebounceMS < 0 {
		return &ValidationError{Path: "persistence.debounce_ms", Message: "must not be negative", Value: c.Persistence.DebounceMS}
	}
	if c.Catalog.TimeoutMS < 0 {
		return &ValidationError{Path: "catalog.timeout_ms", Message: "must not be negative", Value: c.Catalog.TimeoutMS}
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Message: "must be debug, info, warn or error", Value: c.Logging.Level}
	}
	return nil
}

// LogLevel returns the configured log level.
func (c Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// PersistDelay returns the debounce delay for document writes.
func (c Config) PersistDelay() time.Duration {
	return time.Duration(c.Persistence.DebounceMS) * time.Millisecond
}

// CatalogTimeout returns the HTTP catalog timeout.
func (c Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutMS) * time.Millisecond
}
