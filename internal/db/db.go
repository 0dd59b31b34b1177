// Package db opens the database handle and applies the schema.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/config"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/migrations"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// ErrNoDSN is returned when neither DATABASE_URL nor DATABASE_DSN is set.
var ErrNoDSN = errors.New("DATABASE_URL is empty")

// GormConfig returns the gorm configuration; SQL logging only when debug is set.
func GormConfig(debug bool) *gorm.Config {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}
}

// Connect opens a PostgreSQL handle, retrying while the server starts up.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.URL)
	if dsn == "" {
		return nil, ErrNoDSN
	}
	slog.Info("connecting to database", "dsn", MaskDSN(dsn))

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), GormConfig(cfg.Debug))
		if err == nil {
			break
		}
		slog.Warn("database connection failed, retrying", "attempt", i, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := Ping(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// Ping runs SELECT 1 through the handle.
func Ping(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("db ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate applies the schema. With useSQL it runs the embedded SQL migrations
// through golang-migrate (PostgreSQL only); otherwise it falls back to gorm
// AutoMigrate, which is what tests and quick local runs use.
func Migrate(db *gorm.DB, dsn string, useSQL bool) error {
	if useSQL {
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(dsn))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range models.All() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"documents", "invoices", "line_items", "users", "query_logs"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(dsn string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
