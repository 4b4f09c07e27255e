// internal/middleware/board_test.go
//
// Unit-tests for the board-routing middleware.
//
// Context
// -------
// fakeBoards ── minimal BoardExistence implementation so the state
// machine can be exercised without touching the filesystem.
//
// Each sub-test:
//
//   1. Seeds fakeBoards with the boards that "exist".
//   2. Wraps a recording handler with BoardRouter.
//   3. Fires an httptest request and asserts status, fallthrough, and
//      the board UID observed downstream.
//
// Run: go test ./internal/middleware -v

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/yakboard/yakboard/internal/boardctx"
)

// fakeBoards satisfies BoardExistence with a fixed set.
type fakeBoards map[string]struct{}

func (f fakeBoards) Exists(uid string) bool {
	_, ok := f[uid]
	return ok
}

func TestBoardRouter_SetsContextForKnownBoard(t *testing.T) {
	boards := fakeBoards{"alpha": {}}

	var seen string
	var seenOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = boardctx.Current(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/board/alpha/cards", nil)
	rr := httptest.NewRecorder()
	BoardRouter(boards)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !seenOK || seen != "alpha" {
		t.Fatalf("downstream Current = (%q, %v), want (alpha, true)", seen, seenOK)
	}
	// The request's context chain ended with the request; the caller's
	// background context never carried a board.
	if _, ok := boardctx.Current(req.Context()); ok {
		t.Fatal("original request context mutated")
	}
}

func TestBoardRouter_UnknownBoardRejected(t *testing.T) {
	boards := fakeBoards{}

	invoked := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { invoked = true })

	req := httptest.NewRequest(http.MethodGet, "/board/ghost/cards", nil)
	rr := httptest.NewRecorder()
	BoardRouter(boards)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if invoked {
		t.Fatal("downstream invoked for unknown board")
	}
}

func TestBoardRouter_InvalidSegmentFallsThrough(t *testing.T) {
	boards := fakeBoards{"alpha": {}}

	var hadBoard bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadBoard = boardctx.Current(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// Spaces fail validation: treated as "not a board path", not an error.
	req := httptest.NewRequest(http.MethodGet, "/board/bad%20board/cards", nil)
	rr := httptest.NewRecorder()
	BoardRouter(boards)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 fallthrough", rr.Code)
	}
	if hadBoard {
		t.Fatal("board context set for invalid segment")
	}
}

func TestExtractBoardUID(t *testing.T) {
	cases := []struct {
		path string
		uid  string
		ok   bool
	}{
		{"/board/alpha/cards", "alpha", true},
		{"/board/alpha/", "alpha", true},
		{"/board/alpha", "", false}, // no trailing slash → no board
		{"/board/", "", false},
		{"/boards/alpha/cards", "", false}, // wrong marker
		{"/healthz", "", false},
		{"/board/has space/cards", "", false},
		{"/board/../x/cards", "", false},
		{"/board/Alpha-2/x/y", "Alpha-2", true},
	}
	for _, c := range cases {
		uid, ok := ExtractBoardUID(c.path)
		if uid != c.uid || ok != c.ok {
			t.Errorf("ExtractBoardUID(%q) = (%q, %v), want (%q, %v)",
				c.path, uid, ok, c.uid, c.ok)
		}
	}
}

// TestBoardRouter_ConcurrentIsolation drives two boards through the
// middleware at once and asserts neither request ever observes the
// other's UID.
func TestBoardRouter_ConcurrentIsolation(t *testing.T) {
	boards := fakeBoards{"alpha": {}, "beta": {}}

	handler := BoardRouter(boards)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := r.Header.Get("X-Expected-Board")
		for i := 0; i < 50; i++ {
			got, ok := boardctx.Current(r.Context())
			if !ok || got != want {
				t.Errorf("Current = (%q, %v), want (%q, true)", got, ok, want)
				return
			}
			time.Sleep(time.Microsecond)
		}
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		uid := "alpha"
		if i%2 == 1 {
			uid = "beta"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/board/"+uid+"/cards", nil)
			req.Header.Set("X-Expected-Board", uid)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rr.Code)
			}
		}()
	}
	wg.Wait()
}

// TestBoardRouter_ContextEndsWithRequest asserts cleanup on the error
// path: a panicking downstream still leaves no board visible outside the
// request's own context chain.
func TestBoardRouter_ContextEndsWithRequest(t *testing.T) {
	boards := fakeBoards{"alpha": {}}

	handler := BoardRouter(boards)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("downstream exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/board/alpha/cards", nil)
	func() {
		defer func() { _ = recover() }()
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}()

	if _, ok := boardctx.Current(req.Context()); ok {
		t.Fatal("board context survived a panicking request")
	}
}
