// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/pryzma/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/pryzma/config.cue on macOS, %APPDATA%\pryzma\config.cue
// on Windows). Every key can be overridden with a PRYZMA_ environment variable, where
// nested keys use underscores (PRYZMA_PPM_FALLBACK_REPO).
//
// Configuration files are validated against an embedded CUE schema (config_schema.cue)
// before they are merged over the built-in defaults.
package config
