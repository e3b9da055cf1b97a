// Package rotation plans per-ward hymn selections that avoid recent
// repeats. It wraps the selection engine with a history-aware relaxation
// ladder: exclusions shrink rung by rung until the pools are workable, and
// the sacrament slot keeps its repertoire on every rung.
package rotation
