// Package sqlite stores users and session records in a SQLite database
// through the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/lborres/bantay/adapters/sqlite/migrations"
	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/dbx"
)

var (
	_ core.UserStorage    = (*Adapter)(nil)
	_ core.SessionStorage = (*Adapter)(nil)
)

type Adapter struct {
	db dbx.DBTX
}

func New(db dbx.DBTX) *Adapter {
	return &Adapter{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens dsn, applies migrations and returns the adapter with the
// underlying handle so the caller owns its lifetime. SQLite allows a single
// writer, so the pool is capped at one connection.
func Open(ctx context.Context, dsn string) (*Adapter, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return New(db), db, nil
}
