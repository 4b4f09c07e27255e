// internal/registry/registry_test.go
//
// Unit-tests for the board-handle registry.
//
// Context
// -------
// Tests run against real SQLite files under t.TempDir(), so there is no
// mocking of the storage layer; what is asserted is the registry's own
// behaviour: existence checks, at-most-once construction under
// concurrency, eviction, and non-poisoning of negative results.
//
// Run: go test ./internal/registry -v

package registry

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yakboard/yakboard/internal/database"
)

// newTestRegistry returns a registry over a fresh temp dir; the evictor
// ticker is running but its interval is far beyond any test duration.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New(t.TempDir(), IdleTTL, MaxEntries, zap.NewNop().Sugar())
	t.Cleanup(r.Close)
	return r
}

// touchBoard creates an (empty but valid) board database file for uid.
func touchBoard(t *testing.T, r *Registry, uid string) {
	t.Helper()
	db, err := database.Open(r.DatabasePath(uid))
	if err != nil {
		t.Fatalf("create board file: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close board file: %v", err)
	}
}

func TestExists(t *testing.T) {
	r := newTestRegistry(t)
	touchBoard(t, r, "alpha")

	if !r.Exists("alpha") {
		t.Fatal("Exists(alpha) = false, want true")
	}
	if r.Exists("ghost") {
		t.Fatal("Exists(ghost) = true, want false")
	}
	// Hostile identifiers are absent by definition, never path-joined.
	if r.Exists("../alpha") || r.Exists("alpha/../alpha") {
		t.Fatal("Exists accepted a traversal identifier")
	}
}

func TestGet_NotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(ghost) err = %v, want ErrNotFound", err)
	}
}

func TestGet_CachesHandle(t *testing.T) {
	r := newTestRegistry(t)
	touchBoard(t, r, "alpha")

	h1, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	h2, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if h1 != h2 {
		t.Fatal("second Get returned a different handle")
	}
	if h1.UID != "alpha" {
		t.Fatalf("handle UID = %q, want alpha", h1.UID)
	}
}

// TestGet_ConcurrentSingleOpen hammers a cold board from many goroutines
// and asserts every caller receives the same handle, i.e. construction
// happened exactly once.
func TestGet_ConcurrentSingleOpen(t *testing.T) {
	r := newTestRegistry(t)
	touchBoard(t, r, "alpha")

	const n = 32
	var (
		start   = make(chan struct{})
		wg      sync.WaitGroup
		mu      sync.Mutex
		handles = make(map[*Handle]struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			h, err := r.Get("alpha")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			mu.Lock()
			handles[h] = struct{}{}
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	if len(handles) != 1 {
		t.Fatalf("distinct handles = %d, want 1", len(handles))
	}
}

func TestEvict_ClosesAndReopens(t *testing.T) {
	r := newTestRegistry(t)
	touchBoard(t, r, "alpha")

	h1, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	r.Evict("alpha")

	if err := h1.DB.Ping(); err == nil {
		t.Fatal("evicted handle still pings, want closed pool")
	}

	// File stays on disk, so the next Get opens a fresh handle.
	h2, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("Get after evict: %v", err)
	}
	if h1 == h2 {
		t.Fatal("Get after evict returned the closed handle")
	}
	if err := h2.DB.Ping(); err != nil {
		t.Fatalf("reopened handle ping: %v", err)
	}
}

// TestGet_NegativeNotCached proves a NotFound result is not sticky: once
// the file appears, Get succeeds without any registry reset.
func TestGet_NegativeNotCached(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.Get("late"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before create err = %v, want ErrNotFound", err)
	}

	touchBoard(t, r, "late")

	h, err := r.Get("late")
	if err != nil {
		t.Fatalf("Get after create: %v", err)
	}
	if h.UID != "late" {
		t.Fatalf("handle UID = %q, want late", h.UID)
	}
}

func TestClose_ReleasesAllHandles(t *testing.T) {
	r := New(t.TempDir(), IdleTTL, MaxEntries, zap.NewNop().Sugar())
	touchBoard(t, r, "alpha")
	touchBoard(t, r, "beta")

	ha, _ := r.Get("alpha")
	hb, _ := r.Get("beta")
	r.Close()

	if ha.DB.Ping() == nil || hb.DB.Ping() == nil {
		t.Fatal("handles still usable after registry Close")
	}
	// Second Close walks an empty map and must not panic.
	r.Close()
}

// TestClose_StopsEvictorGoroutine asserts Close actually terminates the
// eviction loop: a stopped ticker never fires, so the loop needs the
// quit signal to return instead of blocking forever.
func TestClose_StopsEvictorGoroutine(t *testing.T) {
	baseline := runtime.NumGoroutine()

	regs := make([]*Registry, 8)
	for i := range regs {
		regs[i] = New(t.TempDir(), IdleTTL, MaxEntries, zap.NewNop().Sugar())
	}
	if n := runtime.NumGoroutine(); n < baseline+len(regs) {
		t.Fatalf("goroutines after New = %d, want >= %d", n, baseline+len(regs))
	}

	for _, r := range regs {
		r.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("evictor goroutines leaked: %d running, baseline %d",
		runtime.NumGoroutine(), baseline)
}
