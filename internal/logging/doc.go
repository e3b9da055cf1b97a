// Package logging assembles the structured slog loggers used across Innario.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes small attribute helpers so handlers and stores tag
// log lines with the same component, request, and ward keys. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
