// Package config loads, normalizes, and validates Stem Zipper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STEMZIPPER_LOCALE. The archive size ceiling is clamped into its supported
// range during normalization; every clamp is recorded in Config.Warnings so
// the CLI can report it instead of failing the run.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a canonical extension set, and clear validation errors.
package config
