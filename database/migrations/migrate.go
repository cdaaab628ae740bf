// Package migrations applies the embedded schema to a postgres database.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"golang.org/x/xerrors"
)

//go:embed *.sql
var migrations embed.FS

const migrationsTable = "schema_migrations"

// Stepper returns the embedded migrations as a golang-migrate source.
func Stepper() (source.Driver, error) {
	src, err := iofs.New(migrations, ".")
	if err != nil {
		return nil, xerrors.Errorf("create migration source: %w", err)
	}
	return src, nil
}

func setup(ctx context.Context, db *sql.DB) (*migrate.Migrate, func(), error) {
	src, err := Stepper()
	if err != nil {
		return nil, nil, err
	}

	// A dedicated connection keeps m.Close from closing the caller's pool.
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = src.Close()
		return nil, nil, xerrors.Errorf("acquire connection: %w", err)
	}
	dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		_ = conn.Close()
		_ = src.Close()
		return nil, nil, xerrors.Errorf("wrap postgres connection: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		_ = src.Close()
		return nil, nil, xerrors.Errorf("new migrate instance: %w", err)
	}
	return m, func() { _, _ = m.Close() }, nil
}

// Up runs SQL migrations to ensure the database schema is up-to-date.
func Up(ctx context.Context, db *sql.DB) error {
	m, closeFn, err := setup(ctx, db)
	if err != nil {
		return xerrors.Errorf("migrate setup: %w", err)
	}
	defer closeFn()

	err = m.Up()
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			// It's OK if no changes happened!
			return nil
		}
		return xerrors.Errorf("up: %w", err)
	}
	return nil
}

// Down runs all down SQL migrations.
func Down(ctx context.Context, db *sql.DB) error {
	m, closeFn, err := setup(ctx, db)
	if err != nil {
		return xerrors.Errorf("migrate setup: %w", err)
	}
	defer closeFn()

	err = m.Down()
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return xerrors.Errorf("down: %w", err)
	}
	return nil
}

// EnsureClean checks whether all migrations for the current version have
// been applied, without making any changes to the database. If not, returns
// a non-nil error.
func EnsureClean(ctx context.Context, db *sql.DB) error {
	m, closeFn, err := setup(ctx, db)
	if err != nil {
		return xerrors.Errorf("migrate setup: %w", err)
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if err != nil {
		return xerrors.Errorf("get migration version: %w", err)
	}
	if dirty {
		return xerrors.Errorf("database has not been cleanly migrated")
	}

	latest, err := latestVersion()
	if err != nil {
		return xerrors.Errorf("get latest migration: %w", err)
	}
	if version != latest {
		return xerrors.Errorf("database needs migration (current version: %d, latest version: %d)", version, latest)
	}
	return nil
}

func latestVersion() (uint, error) {
	src, err := Stepper()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	version, err := src.First()
	if err != nil {
		return 0, xerrors.Errorf("first migration: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, xerrors.Errorf("next migration after %d: %w", version, err)
		}
		version = next
	}
}
