// internal/middleware/board.go
//
// Board-routing middleware.
//
// State machine per request:
//
//	START → EXTRACT → VALIDATE → EXISTS_CHECK →
//	    {CONTEXT_SET → DOWNSTREAM} | REJECTED
//
// EXTRACT pulls the board UID out of the fixed `/board/{uid}/...` prefix;
// a bare `/board/{uid}` with nothing after it carries no board.  A
// missing or syntactically invalid segment is treated as "not a board
// path" and falls through untouched, so health checks, /metrics, and the
// admin surface share the router without special-casing.  Only a valid
// UID with no backing database is rejected — with the same body a caller
// with the wrong board would get, so probing cannot enumerate boards.
//
// This middleware is the only component that stamps the board context
// for incoming requests; everything downstream is read-only.

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yakboard/yakboard/internal/boardctx"
	"github.com/yakboard/yakboard/internal/boardid"
)

// marker is the path segment that introduces a board UID.
const marker = "/board/"

// BoardExistence is the slice of the registry the middleware needs.  The
// concrete *registry.Registry satisfies it.
type BoardExistence interface {
	Exists(uid string) bool
}

// BoardRouter returns the middleware that resolves the board for each
// request.  The derived request context carries the UID for the duration
// of downstream execution and dies with the request on every exit path.
func BoardRouter(boards BoardExistence) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := ExtractBoardUID(r.URL.Path)
			if !ok {
				// Not a board path: tenant-agnostic routes proceed as-is.
				next.ServeHTTP(w, r)
				return
			}

			if !boards.Exists(uid) {
				// Identical response for "no such board" and "not yours".
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "not found or access denied",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(boardctx.With(r.Context(), uid)))
		})
	}
}

// ExtractBoardUID parses a board UID out of path.  It returns ok=false
// when the marker is absent, when no slash follows the UID segment, or
// when the segment fails validation.
func ExtractBoardUID(path string) (string, bool) {
	rest, found := strings.CutPrefix(path, marker)
	if !found {
		return "", false
	}
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		// Trailing slash required for the segment to anchor as a board.
		return "", false
	}
	uid := rest[:i]
	if !boardid.Validate(uid) {
		return "", false
	}
	return uid, true
}
