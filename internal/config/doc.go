// Package config manages user-level settings stored in config.yaml under the
// per-user config directory. Values resolve in the order command-line flag,
// TALON_* environment variable, config file, built-in default.
package config
