// Package config loads, normalizes, and validates the TOML configuration
// for overdub. Load falls back to built-in defaults when no config file
// exists, expands ~ in every path field, and rejects unusable values up
// front so the rest of the engine can assume a well-formed Config.
package config
