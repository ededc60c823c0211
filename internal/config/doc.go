// Package config loads, normalizes, and validates the TOML configuration
// shared by the lumina daemon and CLI.
package config
