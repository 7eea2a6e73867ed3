// Package ident generates and validates record identifiers. Every user and
// todo row is keyed by a v4 UUID string in canonical 36-character form.
// Validation is structural only -- it runs before any store lookup so that
// malformed identifiers are rejected without touching the database, and
// without revealing whether a record exists.
package ident

import "github.com/google/uuid"

// Length is the canonical identifier length (8-4-4-4-12 hex with dashes).
const Length = 36

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id is a structurally well-formed identifier.
// uuid.Parse alone accepts several alternate encodings (braced, URN,
// dash-less), so the length is pinned to the canonical form: an otherwise
// valid id with extra trailing characters must be rejected here.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
