// Package config loads scriptsense settings.
//
// Settings are resolved in three layers, later layers overriding earlier
// ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← SCRIPTSENSE_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← scriptsense.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// A missing config file is not an error. Validate reports the first
// setting that is out of range.
package config
