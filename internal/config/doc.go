// Package config loads, normalizes, and validates cookbook renderer settings.
//
// Settings come from a TOML file layered over repository defaults. Paths are
// expanded (including ~), log settings are canonicalized, and Validate reports
// the first unusable value with the TOML key that holds it.
package config
