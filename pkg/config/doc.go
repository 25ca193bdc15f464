// Package config handles configuration management for basefmt.
// It layers embedded defaults, the user config file, the project
// .basefmt.toml, environment variables and command-line overrides.
package config
