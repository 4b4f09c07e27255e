// internal/admin/admin.go
//
// Board lifecycle manager.
//
// Context
// -------
// The manager provisions and retires board databases outside the request
// path.  Create validates the UID, builds the file, applies the full
// versioned schema, and optionally invites an administrator; Delete moves
// the file into the archive area (never a destructive unlink) and evicts
// any cached handle so the routing path immediately observes
// non-existence.  List and Describe are read-only probes.
//
// Invitation is best-effort: once the database exists on disk the board
// is provisioned, and an email failure is reported as a warning, not
// rolled back — storage and outbound mail are different systems.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yakboard/yakboard/internal/boardid"
	"github.com/yakboard/yakboard/internal/database"
	"github.com/yakboard/yakboard/internal/metrics"
	"github.com/yakboard/yakboard/internal/registry"
	"github.com/yakboard/yakboard/internal/schema"
)

// SeedAdminEmail is the placeholder administrator seeded by the schema.
// It is removed when a real administrator is invited at creation time.
const SeedAdminEmail = "admin@example.com"

// ArchiveDirName is the subdirectory of the data dir holding archived
// board files.
const ArchiveDirName = "archive"

// Sentinel errors, mapped to HTTP statuses at the API boundary.
var (
	ErrInvalidUID = errors.New("invalid board identifier")
	ErrConflict   = errors.New("board already exists")
	ErrForbidden  = errors.New("default board cannot be deleted")
	ErrNotFound   = registry.ErrNotFound
)

// Inviter sends an administrator invitation for a freshly created board.
// Implementations live in internal/mailer; a no-op is used in dev.
type Inviter interface {
	Invite(ctx context.Context, boardUID, email string) error
}

// Manager administers board lifecycles.  One instance per process,
// sharing the registry with the routing middleware.
type Manager struct {
	reg        *registry.Registry
	defaultUID string
	baseURL    string
	inviter    Inviter
	log        *zap.SugaredLogger
}

// New constructs a Manager.  baseURL is used to build access URLs in
// Describe and Create responses, e.g. "http://localhost:8080".
func New(reg *registry.Registry, defaultUID, baseURL string, inviter Inviter, log *zap.SugaredLogger) *Manager {
	return &Manager{
		reg:        reg,
		defaultUID: defaultUID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		inviter:    inviter,
		log:        log,
	}
}

// BoardInfo is the describe shape.  Path and AccessURL are empty when the
// board does not exist.
type BoardInfo struct {
	UID          string
	Exists       bool
	DatabasePath string
	AccessURL    string
}

// CreateResult reports a successful provisioning.  Warning carries a
// non-fatal post-creation problem (an invitation failure) and is empty
// otherwise.
type CreateResult struct {
	UID          string
	DatabasePath string
	AccessURL    string
	Warning      string
}

// Create provisions a new board database and applies the full schema.
// When adminEmail is non-empty the address is registered as the board's
// administrator, the seed admin is dropped, and an invitation email is
// sent best-effort.
func (m *Manager) Create(ctx context.Context, uid, adminEmail string) (*CreateResult, error) {
	if !boardid.Validate(uid) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUID, uid)
	}
	if m.reg.Exists(uid) {
		return nil, fmt.Errorf("%w: %q", ErrConflict, uid)
	}
	if err := os.MkdirAll(m.reg.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := m.reg.DatabasePath(uid)
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("create board %s: %w", uid, err)
	}

	if err := schema.Apply(db.DB); err != nil {
		// Never leave a half-initialised file behind.
		_ = db.Close()
		removeDatabaseFiles(path)
		return nil, fmt.Errorf("provision board %s: %w", uid, err)
	}

	res := &CreateResult{
		UID:          uid,
		DatabasePath: path,
		AccessURL:    m.accessURL(uid),
	}

	if adminEmail != "" {
		if warn := m.inviteAdmin(ctx, db, uid, adminEmail); warn != "" {
			res.Warning = warn
		}
	}

	if err := db.Close(); err != nil {
		m.log.Warnw("board pool close after create", "board", uid, "err", err)
	}

	metrics.BoardCreateTotal.Inc()
	m.log.Infow("board created", "board", uid, "path", path)
	return res, nil
}

// inviteAdmin registers email as the board administrator, retires the
// seed account, and sends the invitation.  The returned string is a
// warning (empty on full success); the board itself is already committed
// by the time this runs, so nothing here is fatal.
func (m *Manager) inviteAdmin(ctx context.Context, db *sqlx.DB, uid, email string) string {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (email, role) VALUES (?, 'admin')`, email); err != nil {
		m.log.Warnw("admin account insert failed", "board", uid, "email", email, "err", err)
		return fmt.Sprintf("admin account for %s could not be created: %v", email, err)
	}
	if _, err := db.ExecContext(ctx,
		`DELETE FROM users WHERE email = ? AND role = 'admin'`, SeedAdminEmail); err != nil {
		m.log.Warnw("seed admin removal failed", "board", uid, "err", err)
	}
	if err := m.inviter.Invite(ctx, uid, email); err != nil {
		m.log.Warnw("invitation email failed", "board", uid, "email", email, "err", err)
		return fmt.Sprintf("board created, but the invitation to %s failed: %v", email, err)
	}
	return ""
}

func (m *Manager) accessURL(uid string) string {
	return m.baseURL + "/board/" + uid + "/"
}

// Delete archives the board database for uid.  The file is moved into
// the archive area with a timestamp suffix so re-creating the same UID
// later starts from a blank slate.  Returns the archive path.
func (m *Manager) Delete(ctx context.Context, uid string) (string, error) {
	if !boardid.Validate(uid) {
		// Hostile or malformed UIDs are indistinguishable from absent ones.
		return "", fmt.Errorf("%w: %q", ErrNotFound, uid)
	}
	if uid == m.defaultUID {
		return "", fmt.Errorf("%w: %q", ErrForbidden, uid)
	}
	if !m.reg.Exists(uid) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, uid)
	}

	// Close the pool before touching the file.
	m.reg.Evict(uid)

	archiveDir := filepath.Join(m.reg.DataDir(), ArchiveDirName)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src := m.reg.DatabasePath(uid)
	stamp := time.Now().UTC().Format("20060102T150405Z")
	dst := filepath.Join(archiveDir, fmt.Sprintf("%s-%s.db", uid, stamp))
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("archive board %s: %w", uid, err)
	}
	// WAL sidecars follow the main file when present.
	for _, ext := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(src + ext); err == nil {
			_ = os.Rename(src+ext, dst+ext)
		}
	}

	// A request racing between the eviction above and the rename can
	// re-cache a handle on the still-present file; now that the file is
	// gone, a second eviction leaves no stale pool behind.
	m.reg.Evict(uid)

	metrics.BoardArchiveTotal.Inc()
	m.log.Infow("board archived", "board", uid, "archive", dst)
	return dst, nil
}

// List enumerates provisioned board UIDs by scanning the data directory.
// Archived boards and foreign files are skipped.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.reg.DataDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan data dir: %w", err)
	}

	var uids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		uid, ok := strings.CutSuffix(e.Name(), ".db")
		if !ok || !boardid.Validate(uid) {
			continue
		}
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids, nil
}

// Describe reports existence, file path, and access URL for uid.  A
// nonexistent or malformed UID yields a not-found shape, never an error;
// describing is a safe probe.
func (m *Manager) Describe(uid string) BoardInfo {
	if !boardid.Validate(uid) || !m.reg.Exists(uid) {
		return BoardInfo{UID: uid}
	}
	return BoardInfo{
		UID:          uid,
		Exists:       true,
		DatabasePath: m.reg.DatabasePath(uid),
		AccessURL:    m.accessURL(uid),
	}
}

// removeDatabaseFiles unlinks a database file and its WAL sidecars.
func removeDatabaseFiles(path string) {
	_ = os.Remove(path)
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
}
