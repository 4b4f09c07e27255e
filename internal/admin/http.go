// internal/admin/http.go
//
// HTTP surface for the lifecycle manager.
//
// Routes (mounted under /admin):
//
//	GET    /boards        – list provisioned boards (no auth)
//	POST   /boards        – create a board (bearer credential)
//	GET    /boards/{uid}  – describe a board (no auth)
//	DELETE /boards/{uid}  – archive a board (bearer credential)
//
// Mutating routes require the configured admin token.  When no token is
// configured at all the routes answer 503, which is deliberately distinct
// from 401 (wrong credential): the former is an operator problem, the
// latter a caller problem.

package admin

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// API exposes Manager over HTTP.
type API struct {
	mgr   *Manager
	token string
	log   *zap.SugaredLogger
}

// NewAPI wires the manager to its HTTP surface.  token may be empty, in
// which case every mutating call is refused with 503.
func NewAPI(mgr *Manager, token string, log *zap.SugaredLogger) *API {
	return &API{mgr: mgr, token: token, log: log}
}

// Routes returns the chi router for the admin surface.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/boards", a.handleList)
	r.Post("/boards", a.requireToken(a.handleCreate))
	r.Get("/boards/{uid}", a.handleDescribe)
	r.Delete("/boards/{uid}", a.requireToken(a.handleDelete))
	return r
}

//
// middleware
//

// requireToken guards mutating handlers with the bearer credential.
func (a *API) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.token == "" {
			writeError(w, http.StatusServiceUnavailable, "admin credential not configured")
			return
		}
		bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(bearer), []byte(a.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid admin credential")
			return
		}
		next(w, r)
	}
}

//
// handlers
//

type createRequest struct {
	BoardUID   string `json:"board_uid"`
	AdminEmail string `json:"admin_email,omitempty"`
}

type createResponse struct {
	BoardUID     string `json:"board_uid"`
	DatabasePath string `json:"database_path"`
	AccessURL    string `json:"access_url"`
	Warning      string `json:"warning,omitempty"`
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	res, err := a.mgr.Create(r.Context(), req.BoardUID, req.AdminEmail)
	switch {
	case errors.Is(err, ErrInvalidUID):
		writeError(w, http.StatusBadRequest, "invalid board_uid")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "board already exists")
	case err != nil:
		a.log.Errorw("board create failed", "board", req.BoardUID, "err", err)
		writeError(w, http.StatusInternalServerError, "board creation failed")
	default:
		writeJSON(w, http.StatusCreated, createResponse{
			BoardUID:     res.UID,
			DatabasePath: res.DatabasePath,
			AccessURL:    res.AccessURL,
			Warning:      res.Warning,
		})
	}
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	archived, err := a.mgr.Delete(r.Context(), uid)
	switch {
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "default board cannot be deleted")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "board not found")
	case err != nil:
		a.log.Errorw("board delete failed", "board", uid, "err", err)
		writeError(w, http.StatusInternalServerError, "board deletion failed")
	default:
		writeJSON(w, http.StatusOK, map[string]string{
			"board_uid":     uid,
			"archived_path": archived,
		})
	}
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	uids, err := a.mgr.List()
	if err != nil {
		a.log.Errorw("board list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "board listing failed")
		return
	}

	boards := make([]map[string]string, 0, len(uids))
	for _, uid := range uids {
		boards = append(boards, map[string]string{"board_uid": uid})
	}
	writeJSON(w, http.StatusOK, map[string]any{"boards": boards})
}

type describeResponse struct {
	BoardUID     string  `json:"board_uid"`
	Exists       bool    `json:"exists"`
	DatabasePath *string `json:"database_path"`
	AccessURL    *string `json:"access_url"`
}

func (a *API) handleDescribe(w http.ResponseWriter, r *http.Request) {
	info := a.mgr.Describe(chi.URLParam(r, "uid"))

	resp := describeResponse{BoardUID: info.UID, Exists: info.Exists}
	if info.Exists {
		resp.DatabasePath = &info.DatabasePath
		resp.AccessURL = &info.AccessURL
	}
	writeJSON(w, http.StatusOK, resp)
}

//
// helpers
//

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
