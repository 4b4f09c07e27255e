// Package database centralises sqlx connection helpers for the per-board
// SQLite files.  The driver is modernc.org/sqlite (pure Go, no cgo), so a
// board database is just a file path.
//
// Public entry points:
//
//	Open(path)                   – quick helper with conservative pool sizes.
//	OpenWithOptions(path, opts)  – fine-grained control.
//
// Both helpers Ping the database before returning so callers can fail fast
// on a corrupt or unreadable file.  Callers should Close() the returned
// *sqlx.DB when no longer needed.
package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Options tunes one pool.  Zero values fall back to the defaults used by
// Open.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open returns a *sqlx.DB for path with small per-board defaults: 5 max
// open, 2 idle, and a 30-minute connection lifetime.  The file is created
// on first write if it does not exist.
func Open(path string) (*sqlx.DB, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions lets callers tune the pool per board.  WAL, foreign
// keys, and a busy timeout are applied through DSN pragmas so every
// connection in the pool gets them, not just the first.
func OpenWithOptions(path string, opts Options) (*sqlx.DB, error) {
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 5
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 2
	}
	if opts.ConnMaxLifetime == 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}

	db, err := sqlx.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}

// DSN decorates a file path with the pragmas every board connection needs.
func DSN(path string) string {
	return path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"
}
