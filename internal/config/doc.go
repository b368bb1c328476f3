// Package config loads, normalizes, and validates Kai client configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and the kaid agent need: backend URL and timeouts, offline queue
// sizing, drain intervals, and local API settings. A Watcher reloads the
// file on change so long-running agents pick up tuning without a restart.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
