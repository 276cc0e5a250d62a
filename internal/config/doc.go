// Package config loads, normalizes, and validates subburn configuration.
//
// Settings come from a TOML file (explicit path, then
// ~/.config/subburn/config.toml, then ./subburn.toml) layered over
// defaults, with API keys falling back to the provider's environment
// variable. Command-line flags override the loaded values.
package config
