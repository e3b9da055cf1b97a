// Package auth holds the credential primitives the API server composes:
// bcrypt password hashing, HS256 bearer tokens, and the role hierarchy that
// scopes organization and ward access.
package auth
