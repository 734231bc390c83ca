// Package config loads and merges inspect configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (INSPECT_PROVIDER, INSPECT_MODEL, INSPECT_TIMEOUT, etc.)
//  3. Config file ($XDG_CONFIG_HOME/inspect/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key by name.
package config
