// internal/schema/schema_test.go
//
// Unit-tests for the embedded board schema.
//
// Run: go test ./internal/schema -v

package schema

import (
	"path/filepath"
	"testing"

	"github.com/yakboard/yakboard/internal/database"
)

func TestApply_CreatesAllTables(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Apply(db.DB); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for _, table := range []string{"users", "lists", "cards", "labels", "card_labels", "comments"} {
		var n int
		err := db.Get(&n,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		if err != nil {
			t.Fatalf("sqlite_master query: %v", err)
		}
		if n != 1 {
			t.Errorf("table %q missing after Apply", table)
		}
	}
}

func TestApply_StampsVersionAndIsIdempotent(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Apply(db.DB); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	v, err := Version(db.DB)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v < 1 {
		t.Fatalf("schema version = %d, want >= 1", v)
	}

	// Second run must be a no-op, not an error.
	if err := Apply(db.DB); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
}

func TestApply_SeedsDefaultAdmin(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := Apply(db.DB); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE role = 'admin'`); err != nil {
		t.Fatalf("users query: %v", err)
	}
	if n != 1 {
		t.Fatalf("seed admin count = %d, want 1", n)
	}
}
