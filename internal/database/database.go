// Package database opens the PostgreSQL pool behind the template and media
// stores and keeps its schema current with goose.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedMigrations embed.FS

// ErrFailedToConnect is returned when no ping succeeded within the
// configured attempts.
var ErrFailedToConnect = errors.New("failed to connect to postgres")

// Config holds the pool settings. Zero values fall back to the defaults
// below.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RetryAttempts   int
	RetryInterval   time.Duration
}

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultRetryInterval   = 2 * time.Second
	pingTimeout            = 5 * time.Second
)

// Connect opens the pool and pings it, retrying while the server comes up.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, defaultMaxOpenConns))
	db.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, defaultMaxIdleConns))
	db.SetConnMaxLifetime(orDefault(cfg.ConnMaxLifetime, defaultConnMaxLifetime))

	attempts := max(cfg.RetryAttempts, 1)
	interval := orDefault(cfg.RetryInterval, defaultRetryInterval)

	var lastErr error
	for i := range attempts {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()
		if lastErr == nil {
			slog.Info("database connected", "attempt", i+1)
			return db, nil
		}

		if i < attempts-1 {
			slog.Warn("database not ready, retrying", "attempt", i+1, "error", lastErr)
			select {
			case <-ctx.Done():
				db.Close()
				return nil, fmt.Errorf("%w: %w", ErrFailedToConnect, ctx.Err())
			case <-time.After(interval):
			}
		}
	}

	db.Close()
	return nil, fmt.Errorf("%w: %w", ErrFailedToConnect, lastErr)
}

// Migrate applies pending migrations from the embedded SQL files and
// returns the resulting schema version.
func Migrate(ctx context.Context, db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	slog.Info("database migrations applied", "version", version)
	return version, nil
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
