// Package server exposes the planner and the organization registry over
// HTTP.
//
// Routes live under /api/v1. The health probe and the login endpoint are
// open; everything else requires a bearer token issued at login and is
// checked against the account's role rank on every request. Ward-scoped
// endpoints additionally verify that the ward falls inside the caller's
// visibility (area, stake, or assignment).
//
// Handlers decode api package DTOs, call the store or the selection
// service, and map domain errors onto statuses: invalid selection input is
// a 400, unsatisfiable pools and duplicate names a 409, missing rows a
// 404. Unmapped errors surface as a 500 with the detail kept in the log.
package server
