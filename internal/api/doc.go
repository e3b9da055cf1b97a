// Package api defines wire-format types and converters for the HTTP layer.
// It translates store and catalog models into transport-friendly DTOs so
// handlers and front-end consumers never couple to internal types.
//
// # Key Types
//
// Selection: a planned or recorded service program with 1-based slots, the
// target Sunday in YYYY-MM-DD form, and its long-form label.
//
// User/Ward/Stake/Area: account and organization records without internal
// fields (password hashes stay in the store).
//
// SelectionService: orchestrates date resolution, history-aware planning,
// optional recording, slot replacement, and history queries.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers.
// Timestamps use RFC3339 with milliseconds; selection dates are plain
// calendar days. Zero organization references are omitted from payloads.
package api
