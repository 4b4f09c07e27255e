// internal/schema/schema.go
//
// Versioned board schema.
//
// Context
// -------
// Every board database carries the full business schema (users, lists,
// cards, labels, comments) plus goose's version table, which doubles as
// the migration-version marker the admin create operation must stamp.
// Migrations are embedded so a deployed binary can provision boards with
// no files on disk beyond the data directory itself.
//
// Goose keeps dialect and base-FS in package-level state, so Apply and
// Version serialise behind one mutex; board creation is rare enough that
// the lock never matters.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package schema

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var mu sync.Mutex

// Apply brings db up to the latest schema version.  Safe to call on a
// freshly created empty database and idempotent on an up-to-date one.
func Apply(db *sql.DB) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply board schema: %w", err)
	}
	return nil
}

// Version returns the schema version currently stamped on db.
func Version(db *sql.DB) (int64, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
