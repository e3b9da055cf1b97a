package store

import "errors"

var (
	// ErrNotFound marks lookups for rows that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks writes that would violate a uniqueness rule, such as
	// duplicate ward names or an already registered username.
	ErrConflict = errors.New("already exists")
)
