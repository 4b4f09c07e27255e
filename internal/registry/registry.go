// internal/registry/registry.go
//
// Concurrency-safe board-handle registry.
//
// Context
// -------
// The registry is the single owner of long-lived per-board resources.
// Handles are opened lazily on first access: a sync.Map holds the cache,
// and a singleflight.Group keyed by board UID guarantees at-most-once
// construction even when many requests hit a cold board at the same
// moment.  Opening one board never blocks requests for other boards —
// singleflight serialises per key, not globally.
//
// The file on disk is the source of truth for existence.  Exists never
// creates in-memory state, and a failed open is returned to every waiting
// caller without being cached, so a transiently unreadable file does not
// poison future requests.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yakboard/yakboard/internal/boardid"
	"github.com/yakboard/yakboard/internal/database"
	"github.com/yakboard/yakboard/internal/metrics"
)

// Static defaults.  Override via config if desired.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 100
	EvictInterval = 5 * time.Minute
)

// ErrNotFound is returned when a board has no database file on disk.
var ErrNotFound = errors.New("board not found")

// Registry lazily opens board handles, stores them in a sync.Map, and
// evicts them on idle TTL or LRU pressure.
type Registry struct {
	dataDir     string
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	quit        chan struct{}
	quitOnce    sync.Once
	idleTTL     time.Duration
	maxEntries  int
	log         *zap.SugaredLogger
}

// New constructs a Registry over dataDir and starts the background
// evictor.  Callers own exactly one Registry per process and pass it by
// reference to the middleware and the admin manager.
func New(dataDir string, idleTTL time.Duration, maxEntries int, log *zap.SugaredLogger) *Registry {
	r := &Registry{
		dataDir:    dataDir,
		quit:       make(chan struct{}),
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
		log:        log,
	}
	r.evictTicker = time.NewTicker(EvictInterval)
	go r.evictLoop()
	return r
}

// DataDir returns the primary storage directory.
func (r *Registry) DataDir() string { return r.dataDir }

// DatabasePath returns the deterministic file path for uid.  The UID must
// already be validated; the result is always inside the data directory.
func (r *Registry) DatabasePath(uid string) string {
	return filepath.Join(r.dataDir, uid+".db")
}

// Exists reports whether uid has a backing database file.  No in-memory
// resources are created.  Invalid UIDs are reported as absent so a hostile
// identifier can never reach filepath.Join.
func (r *Registry) Exists(uid string) bool {
	if !boardid.Validate(uid) {
		return false
	}
	fi, err := os.Stat(r.DatabasePath(uid))
	return err == nil && fi.Mode().IsRegular()
}

// Get returns the Handle for uid, opening it on demand.  It fails with
// ErrNotFound when no database file exists.  Concurrent first access for
// the same cold board results in exactly one open; every caller receives
// the same Handle.
func (r *Registry) Get(uid string) (*Handle, error) {
	if v, ok := r.m.Load(uid); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.handle, nil
	}

	v, err, _ := r.sfg.Do(uid, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := r.m.Load(uid); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.handle, nil
		}
		if !r.Exists(uid) {
			return nil, ErrNotFound
		}
		path := r.DatabasePath(uid)
		db, err := database.Open(path)
		if err != nil {
			metrics.BoardOpenErrorsTotal.Inc()
			return nil, fmt.Errorf("open board %s: %w", uid, err)
		}
		ent := &entry{
			handle:   &Handle{UID: uid, Path: path, DB: db},
			lastSeen: time.Now().UnixNano(),
		}
		r.m.Store(uid, ent)
		metrics.BoardOpenTotal.Inc()
		metrics.ActiveBoards.Inc()
		return ent.handle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// Evict closes and removes the cached handle for uid, if any.  Called by
// the admin manager before a board is archived so subsequent requests
// observe non-existence instead of a stale pool.
func (r *Registry) Evict(uid string) {
	if v, ok := r.m.LoadAndDelete(uid); ok {
		ent := v.(*entry)
		if err := ent.handle.Close(); err != nil {
			r.log.Warnw("board handle close failed", "board", uid, "err", err)
		}
		metrics.BoardEvictTotal.Inc()
		metrics.ActiveBoards.Dec()
	}
}

// Close stops the evictor and releases every cached handle.  Used during
// graceful shutdown.  Safe to call more than once.
func (r *Registry) Close() {
	r.evictTicker.Stop()
	// Stop leaves the ticker channel open, so the loop needs its own
	// shutdown signal to actually return.
	r.quitOnce.Do(func() { close(r.quit) })
	r.m.Range(func(key, value any) bool {
		_ = value.(*entry).handle.Close()
		r.m.Delete(key)
		metrics.ActiveBoards.Dec()
		return true
	})
}
