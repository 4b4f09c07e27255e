// internal/boardid/boardid.go
//
// Board-identifier validation.
//
// Context
// -------
// A board UID doubles as the base name of the board's SQLite file, so the
// charset rule is a security boundary, not a style preference: anything
// outside `[A-Za-z0-9-]` is rejected before the UID ever reaches a
// filepath.Join.  Both the request-routing middleware and the admin
// create endpoint call the same function, so the two enforcement points
// cannot drift.
//
// Notes
// -----
// • Pure and total: no I/O, no allocation, always returns a bool.
// • Oxford commas, two spaces after periods.

package boardid

import "strings"

// MaxLen is the maximum accepted UID length in bytes.
const MaxLen = 50

// Validate reports whether s is an acceptable board UID: 1–50 characters,
// ASCII letters, digits, and hyphen only.  Dot-only names and anything
// containing a path separator are rejected explicitly, even though the
// charset rule already excludes them.
func Validate(s string) bool {
	if len(s) == 0 || len(s) > MaxLen {
		return false
	}
	// Belt and braces: these can never pass the charset loop below, but a
	// UID becomes a file name, so reject them before anything else.
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}
