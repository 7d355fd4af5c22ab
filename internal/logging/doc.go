// Package logging assembles structured slog loggers for the cookbook renderer.
//
// It owns the console and JSON handlers, level parsing, and a small set of
// attribute helpers so every component tags its lines with the same keys
// (component, request_id, recipe). A no-op logger is provided for tests and
// for wiring code that has no logger to hand.
package logging
