// Package config loads deckmacro daemon settings.
//
// Settings come from three sources, higher overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← DECKMACRO_LOG_LEVEL, DECKMACRO_INPUT_BACKEND, ...
//	├─────────────────────────────┤
//	│  2. Settings File           │  ← deckmacro.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The merged result is decoded into a typed Settings value. A Config holds
// the current Settings and can reload them when the file changes.
//
// # Settings File
//
//	[host]
//	url = "ws://127.0.0.1:19999/plugin"
//
//	[logging]
//	level = "info"
//
//	[input]
//	backend = "robotgo"   # or "dryrun"
//	tickSpacing = "10ms"
//
// # Sub-packages
//
//   - loader: TOML and environment variable sources
//   - watcher: change notification for settings files
package config
