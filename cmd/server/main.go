package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/config"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/db"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/policy"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/seed"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/vanna"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedFlag        = flag.Bool("seed", false, "Load the document export and exit")
	seedFileFlag    = flag.String("seed-file", "", "Export to load with -seed (default SEED_DATA_PATH)")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.App))

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	if app.Dev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(dbConn); err != nil {
			slog.Warn("closing database", "error", err)
		}
	}()

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg.Database.URL, cfg.Database.Migrations); err != nil {
			return err
		}
		slog.Info("migrations completed")
		return nil
	}

	if *seedFlag {
		if err := db.Migrate(dbConn, cfg.Database.URL, cfg.Database.Migrations); err != nil {
			return err
		}
		path := *seedFileFlag
		if path == "" {
			path = cfg.App.SeedDataPath
		}
		res, err := seed.RunFile(ctx, dbConn, path)
		if err != nil {
			return err
		}
		slog.Info("seed completed", "documents", res.Documents, "invoices", res.Invoices, "lineItems", res.LineItems)
		return nil
	}

	if err := db.Migrate(dbConn, cfg.Database.URL, cfg.Database.Migrations); err != nil {
		return err
	}

	chat := vanna.NewClient(cfg.Vanna.BaseURL, cfg.Vanna.APIKey, cfg.Vanna.Timeout)
	if !chat.Configured() {
		slog.Warn("VANNA_API_BASE_URL not set; chat routes will answer 500")
	}

	routerCfg, err := policy.NewRouterConfig(dbConn, cfg, chat)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(routerCfg, cfg.Server.CORSOrigin),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
