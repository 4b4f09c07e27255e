// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                      – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `YAKBOARD_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.  BaseURL feeds the access URLs the
// admin API hands back; it defaults to http://<listen_addr>.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	BaseURL    string `koanf:"base_url"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Storage section
//

// Storage locates the board database files and tunes the handle cache.
type Storage struct {
	DataDir       string        `koanf:"data_dir" validate:"required"`
	IdleTTL       time.Duration `koanf:"idle_ttl"`
	MaxOpenBoards int           `koanf:"max_open_boards"`
}

//
// Admin section
//

// Admin carries the bearer credential for mutating lifecycle operations.
// An empty token disables them (503), which is the safe default.
type Admin struct {
	Token string `koanf:"token"`
}

//
// Board section
//

// Board names the protected default board.
type Board struct {
	Default string `koanf:"default" validate:"required,boarduid"`
}

//
// Mail section
//

// Mail configures the Postmark invitation sender.  All three values are
// required together; when absent the no-op sender is used.
type Mail struct {
	PostmarkServerToken  string `koanf:"postmark_server_token"`
	PostmarkAccountToken string `koanf:"postmark_account_token"`
	From                 string `koanf:"from"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or YAKBOARD_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string // YAKBOARD_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	Storage Storage `koanf:"storage"`
	Admin   Admin   `koanf:"admin"`
	Board   Board   `koanf:"board"`
	Mail    Mail    `koanf:"mail"`
	Paths   Paths   `koanf:"-"` // not loaded from config files
}
