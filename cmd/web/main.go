// cmd/web/main.go
//
// Yakboard – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start rotating logger (tees to console when running in a TTY).
//
//  2. Load layered config (conf/.env → conf/global.yaml → YAKBOARD_*).
//
//  3. Build the board registry over the data directory (lazy handles).
//
//  4. Wire the lifecycle manager and its /admin surface, choosing the
//     Postmark inviter when mail is configured and the no-op otherwise.
//
//  5. Assemble the chi router:
//
//     • security headers (+ optional HTTPS redirect)
//     • board-routing middleware   – /board/{uid}/… → board context
//     • /metrics, /healthz         – tenant-agnostic
//     • /admin/boards…             – lifecycle API
//     • /board/{uid}/              – board status via the context path
//
//  6. Serve with hardened timeouts; SIGINT/SIGTERM drains the server,
//     then the registry closes every handle.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yakboard/yakboard/internal/admin"
	"github.com/yakboard/yakboard/internal/board"
	"github.com/yakboard/yakboard/internal/config"
	"github.com/yakboard/yakboard/internal/logger"
	"github.com/yakboard/yakboard/internal/mailer"
	"github.com/yakboard/yakboard/internal/middleware"
	"github.com/yakboard/yakboard/internal/registry"
	"github.com/yakboard/yakboard/internal/server"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config ──────────────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Board registry (lazy handle cache) ──────────────────────────
	//
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		logOut.Fatalf("create data dir: %v", err)
	}
	idleTTL := cfg.Storage.IdleTTL
	if idleTTL == 0 {
		idleTTL = registry.IdleTTL
	}
	maxBoards := cfg.Storage.MaxOpenBoards
	if maxBoards == 0 {
		maxBoards = registry.MaxEntries
	}
	reg := registry.New(cfg.Storage.DataDir, idleTTL, maxBoards, logOut)

	//
	// ── 3.  Lifecycle manager + admin API ───────────────────────────────
	//
	var inviter admin.Inviter = mailer.Noop{Log: logOut}
	if cfg.Mail.PostmarkServerToken != "" {
		pm, err := mailer.NewPostmark(
			cfg.Mail.PostmarkServerToken,
			cfg.Mail.PostmarkAccountToken,
			cfg.Mail.From,
		)
		if err != nil {
			logOut.Fatalf("configure mailer: %v", err)
		}
		inviter = pm
	}

	mgr := admin.New(reg, cfg.Board.Default, cfg.HTTP.BaseURL, inviter, logOut)
	api := admin.NewAPI(mgr, cfg.Admin.Token, logOut)

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(middleware.Security)
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}
	r.Use(middleware.BoardRouter(reg))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/admin", api.Routes())
	r.Get("/board/{uid}/", board.StatusHandler(reg, logOut))

	//
	// ── 5.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Warnw("server shutdown", "err", err)
	}
	reg.Close()
	logOut.Infow("bye")
}
