package db

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	migrations "github.com/doodlesbykumbi/threadly-in-go/db"
)

// MigrationURL rewrites a database URL into the form golang-migrate expects.
func MigrationURL(dbURL string) (string, error) {
	dialect, rest, err := Parse(dbURL)
	if err != nil {
		return "", err
	}

	switch dialect {
	case DialectPostgres:
		return dbURL, nil
	case DialectMySQL:
		// migration files hold several statements each
		return "mysql://" + withQueryParam(rest, "multiStatements", "true"), nil
	default:
		return "sqlite3://" + rest, nil
	}
}

// EmbeddedMigrations returns the migrations compiled into the binary for
// the dialect of dbURL.
func EmbeddedMigrations(dbURL string) (source.Driver, error) {
	dialect, _, err := Parse(dbURL)
	if err != nil {
		return nil, err
	}

	sub, err := fs.Sub(migrations.Migrations, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}

	d, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}
	return d, nil
}

// MigrationsDir returns the on-disk directory holding the migrations for the
// dialect of dbURL, relative to root.
func MigrationsDir(root, dbURL string) (string, error) {
	dialect, _, err := Parse(dbURL)
	if err != nil {
		return "", err
	}
	return root + "/" + string(dialect), nil
}

// NewMigrator builds a golang-migrate instance over the given source.
func NewMigrator(src source.Driver, dbURL string) (*migrate.Migrate, error) {
	migrationURL, err := MigrationURL(dbURL)
	if err != nil {
		return nil, err
	}
	return migrate.NewWithSourceInstance("iofs", src, migrationURL)
}

// MigrateUp applies every pending embedded migration to dbURL.
func MigrateUp(dbURL string) error {
	src, err := EmbeddedMigrations(dbURL)
	if err != nil {
		return err
	}

	m, err := NewMigrator(src, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
