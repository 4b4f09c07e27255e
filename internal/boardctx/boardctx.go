// internal/boardctx/boardctx.go
//
// Request-scoped "current board" propagation.
//
// Context
// -------
// The routing middleware stamps the active board UID onto the request's
// context.Context; everything downstream (handlers, repositories, any
// goroutine that inherits the request context) reads it back with
// Current.  Because a derived context is immutable and dies with the
// request, cleanup is structural: there is no clear step to forget, and
// no way for one request's board to bleed into another — each request
// owns its own context chain, on every exit path including panics and
// cancellation.
//
// Usage
// -----
//     ctx := boardctx.With(r.Context(), "yaka")
//     ...
//     uid, ok := boardctx.Current(ctx)   // "yaka", true
//
// Notes
// -----
// • Never store the UID in package-level state; the context value is the
//   only carrier.
// • Oxford commas, two spaces after periods.

package boardctx

import "context"

// boardKey is unexported to avoid context-key collisions.
type boardKey struct{}

// With returns a child context carrying uid as the current board.
func With(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, boardKey{}, uid)
}

// Current returns the board UID carried by ctx.  The second result is
// false outside any board-scoped request, or when the stored value is
// not a string.
func Current(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(boardKey{}).(string)
	return uid, ok
}
