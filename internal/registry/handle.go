// internal/registry/handle.go
//
// Registry entry and board handle.
//
// Context
// -------
// A live Handle aggregates what request handlers need to talk to one
// board: its UID, the file path, and the sqlx pool open on that file.
// The registry stores a pointer to Handle inside `entry`, along with a
// `lastSeen` UnixNano timestamp used by the evictor for idle and LRU
// eviction.
//
// Notes
// -----
//   - `Close` is invoked only by the registry (evictor, Evict, or
//     shutdown); handlers must treat a Handle as immutable and must not
//     hold it past the end of their request.
//   - Oxford commas, two spaces after periods.

package registry

import (
	"github.com/jmoiron/sqlx"
)

//
// Registry entry
//

type entry struct {
	handle   *Handle
	lastSeen int64 // UnixNano
}

//
// Board handle
//

// Handle groups the per-board runtime resources shared by all requests
// for that board.  Each request still checks its own connection out of
// the pool; the Handle itself is read-only after construction.
type Handle struct {
	UID  string   // Validated board identifier
	Path string   // Absolute or registry-relative database file path
	DB   *sqlx.DB // Shared connection pool
}

// Close releases the underlying pool.
func (h *Handle) Close() error { return h.DB.Close() }
