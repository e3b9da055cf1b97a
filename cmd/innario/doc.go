// Package main hosts the innario CLI entrypoint and command graph.
//
// The Cobra-based command tree covers running the API server, downloading
// and inspecting the hymn catalog, previewing selections, bootstrapping the
// first superadmin account, and configuration scaffolding. It centralizes
// configuration resolution and output formatting so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
