package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type Config struct {
	Driver      string // "pgx" or "sqlite3"
	URL         string
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// Connect opens the pool, checks connectivity and applies the schema.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: failed to connect to %s: %w", cfg.Driver, err)
	}

	var tmp int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&tmp); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: health check failed: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func open(cfg Config) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "sqlite3":
		db, err := sqlx.Open("sqlite3", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite: %w", err)
		}
		// one writer; an in-memory database also lives on a single connection
		db.SetMaxOpenConns(1)
		return db, nil

	case "pgx", "":
		pcfg, err := pgx.ParseConfig(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
		}

		// Fail fast on startup if PG is unreachable
		pcfg.ConnectTimeout = 5 * time.Second

		db := sqlx.NewDb(stdlib.OpenDB(*pcfg), "pgx")

		if cfg.MaxOpen > 0 {
			db.SetMaxOpenConns(cfg.MaxOpen)
		}
		if cfg.MaxIdle > 0 {
			db.SetMaxIdleConns(cfg.MaxIdle)
		}
		if cfg.MaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.MaxLifetime)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}
}

// Migrate creates the tables if they do not exist. Statements run one by one
// so the same list works on both drivers.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: migrate step %d: %w", i, err)
		}
	}
	return nil
}
