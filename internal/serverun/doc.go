// Package serverun boots the API server process: signal wiring, run-scoped
// log files with retention, the single-instance lock, the PID file, catalog
// loading, and store setup. Both "innario serve" and the innariod binary call
// Run so the two entry points cannot drift.
package serverun
