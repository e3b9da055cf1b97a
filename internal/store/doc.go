// Package store persists the congregation structure, user accounts, and hymn
// selection history in SQLite.
//
// The Store manages database connections, schema initialization, and every
// query the service needs: organization CRUD for areas, stakes, and wards,
// account management with role-scoped organization references, ward
// visibility resolution, and the per-ward selection log that feeds hymn
// rotation.
//
// Selection dates are stored as UTC midnights so lookback windows reduce to
// string comparisons. Schema changes bump the version in schema.go; users
// delete the database file to adopt the new schema.
package store
