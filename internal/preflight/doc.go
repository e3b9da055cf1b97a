// Package preflight provides readiness checks for the filesystem paths and
// local state the hymn service depends on.
//
// The CLI "innario status" command renders RunAll as a table; serverun runs
// the same directory checks before binding so a misconfigured install fails
// fast instead of erroring on the first request.
package preflight
