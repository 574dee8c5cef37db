package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/kobimazuz/pi-order-system-sub000/internal/config"
	"github.com/kobimazuz/pi-order-system-sub000/internal/engine"
	"github.com/kobimazuz/pi-order-system-sub000/internal/logging"
	"github.com/kobimazuz/pi-order-system-sub000/internal/postgres"
	"github.com/kobimazuz/pi-order-system-sub000/internal/storage"
	"github.com/kobimazuz/pi-order-system-sub000/internal/web"
)

func main() {
	// Load .env if present; Overload lets the file win over stale shell vars.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"images_enabled", cfg.Storage.ImagesEnabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	var images postgres.ImageStore
	if cfg.Storage.ImagesEnabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.PublicBaseURL)
		if err != nil {
			slog.Error("failed to set up image storage", "error", err)
			os.Exit(1)
		}
		images = s3Store
		slog.Info("image storage ready", "bucket", cfg.Storage.Bucket, "region", cfg.Storage.Region)
	} else {
		slog.Warn("image storage not configured, product images will be skipped")
	}

	repo := postgres.NewRepository(pool, images)
	ledger := postgres.NewLedgerStore(pool)
	executor := engine.NewExecutor(repo, ledger)

	server := web.NewServer(executor, ledger, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
