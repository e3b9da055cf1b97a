// Package musicapi provides the minimal church music library client used to
// download the Italian hymnbook.
//
// It builds the songsFilteredList query the library expects, decodes the song
// entries the selection flow needs, and keeps the raw payload intact so the
// catalog file on disk preserves every upstream field. Options allow tests to
// supply custom HTTP clients without modifying production code.
package musicapi
