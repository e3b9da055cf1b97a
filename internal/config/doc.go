// Package config loads, normalizes, and validates Innario configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// INNARIO_JWT_SECRET. The Config type centralizes every knob the server and
// CLI need, so catalog location, auth settings, and rotation windows are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
