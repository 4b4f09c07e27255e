// internal/board/status.go
//
// Board status endpoint.
//
// Context
// -------
// The one tenant-scoped route the backend serves itself: a summary of
// the board reached through the canonical path — current UID from the
// request context, handle from the registry, session from the handle's
// pool.  The CRUD surface proper (cards, lists, labels) lives in the
// external API layer; this endpoint exists so the backend exposes, and
// the tests exercise, the full tenant resolution chain.

package board

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yakboard/yakboard/internal/boardctx"
	"github.com/yakboard/yakboard/internal/registry"
)

// HandleSource is the slice of the registry the handler needs.  The
// concrete *registry.Registry satisfies it.
type HandleSource interface {
	Get(uid string) (*registry.Handle, error)
}

// Status summarises one board.
type Status struct {
	BoardUID string `json:"board_uid"`
	Lists    int    `json:"lists"`
	Cards    int    `json:"cards"`
}

// StatusHandler reports list and card counts for the request's board.
func StatusHandler(boards HandleSource, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := boardctx.Current(r.Context())
		if !ok {
			// Reached without the routing middleware; same opaque shape.
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "not found or access denied",
			})
			return
		}

		h, err := boards.Get(uid)
		if err != nil {
			// Existence was checked upstream; a failure here is a handle
			// initialisation problem, fatal for this request only.
			log.Errorw("board handle unavailable", "board", uid, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "board unavailable",
			})
			return
		}

		st := Status{BoardUID: uid}
		if err := h.DB.GetContext(r.Context(), &st.Lists,
			`SELECT COUNT(*) FROM lists WHERE archived = 0`); err != nil {
			log.Errorw("board status query", "board", uid, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "board unavailable",
			})
			return
		}
		if err := h.DB.GetContext(r.Context(), &st.Cards,
			`SELECT COUNT(*) FROM cards WHERE archived = 0`); err != nil {
			log.Errorw("board status query", "board", uid, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "board unavailable",
			})
			return
		}

		writeJSON(w, http.StatusOK, st)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
