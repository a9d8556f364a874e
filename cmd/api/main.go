package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/fileshelf/internal/auth"
	"github.com/vaughan-dsouza/fileshelf/internal/config"
	"github.com/vaughan-dsouza/fileshelf/internal/db"
	"github.com/vaughan-dsouza/fileshelf/internal/handlers"
	"github.com/vaughan-dsouza/fileshelf/internal/metrics"
	"github.com/vaughan-dsouza/fileshelf/internal/server"
	"github.com/vaughan-dsouza/fileshelf/internal/storage"
	"github.com/vaughan-dsouza/fileshelf/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
	log.Info("server exited")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, closeStore, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := auth.NewService(users, cfg.JWTSecret, auth.WithBcryptCost(cfg.BcryptCost))

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := svc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		switch {
		case err != nil:
			log.Error("seed admin failed", "email", cfg.AdminEmail, "err", err)
		case created:
			log.Info("admin account created", "email", cfg.AdminEmail)
		}
	}

	root, err := storage.New(cfg.StoragePath)
	if err != nil {
		return err
	}
	if err := root.Ensure(); err != nil {
		log.Warn("storage root not ready", "dir", root.Dir(), "err", err)
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, m, log)
	}

	router := server.NewRouter(server.RouterDeps{
		Handler:        handlers.NewHandler(svc, root, m, log, cfg.MaxUploadBytes()),
		Verifier:       svc,
		Metrics:        m,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	log.Info("starting",
		"addr", cfg.Addr(),
		"storage", root.Dir(),
		"store", cfg.StoreDriver,
		"public_base_url", cfg.PublicBaseURL,
	)

	return server.Run(ctx, cfg.Addr(), router, server.Timeouts{
		ReadHeader: cfg.ReadHeaderTimeout,
		Read:       cfg.ReadTimeout,
		Write:      cfg.WriteTimeout,
		Idle:       cfg.IdleTimeout,
		Shutdown:   cfg.ShutdownTimeout,
	}, log)
}

// openUserStore returns the configured credential store and its release func.
// A failed migration is logged and the server keeps running; requests that
// need the missing schema then fail with 500.
func openUserStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Users, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory user store; accounts are lost on restart")
		return store.NewMemoryUsers(), func() {}, nil
	}

	conn, err := db.Connect(ctx, cfg.DSN(), db.PoolOptions{
		MaxOpen:     cfg.DBMaxOpen,
		MaxIdle:     cfg.DBMaxIdle,
		MaxLifetime: cfg.DBMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(ctx, conn); err != nil {
		log.Error("schema migration failed", "err", err)
	} else {
		log.Info("database ready: users table checked")
	}

	return store.NewPostgresUsers(conn, cfg.DBQueryTimeout), closeDB(conn, log), nil
}

func closeDB(conn *sqlx.DB, log *slog.Logger) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Error("db close", "err", err)
		}
	}
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info("metrics exposed", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", "err", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
