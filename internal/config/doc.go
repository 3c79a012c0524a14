// Package config provides the configuration for anm2edit.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Environment Variables   │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Override File           │  ← best effort, errors are logged
//	├─────────────────────────────┤
//	│  2. Primary File            │  ← ~/.config/anm2edit/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A missing primary file yields the defaults; a primary file that does not
// parse or validate is an error. The override file never fails a load.
//
// # Environment Variables
//
//	ANM2EDIT_LOG_LEVEL     log.level
//	ANM2EDIT_LOG_FORMAT    log.format
//	ANM2EDIT_HISTORY_MAX   history.max_entries
//	ANM2EDIT_LANGUAGE      naming.language
//
// # Example
//
//	[log]
//	level = "debug"
//
//	[history]
//	max_entries = 200
//
//	[naming]
//	language = "ja"
//	catalog = "~/.config/anm2edit/names.toml"
package config
