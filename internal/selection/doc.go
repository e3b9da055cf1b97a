// Package selection implements the hymn selection rules for a Sunday
// service: three hymns on the first Sunday of the month, four otherwise,
// with the sacrament hymn always in the second slot.
//
// The Engine is pure given its inputs. Randomness goes through the Sampler
// interface so tests and the CLI preview can drive selection
// deterministically, and the history-aware rotation layer reuses SelectFrom
// with pre-filtered pools.
package selection
