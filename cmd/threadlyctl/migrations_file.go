//go:build file_migrations

package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/db"
)

const defaultMigrationsPath = "db/migrations"

// createMigrateInstance reads migrations from disk, which lets them be edited
// without rebuilding. THREADLY_MIGRATIONS_PATH overrides the location.
func createMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	root := defaultMigrationsPath
	if p := os.Getenv("THREADLY_MIGRATIONS_PATH"); p != "" {
		root = p
	}

	dir, err := db.MigrationsDir(root, dbURL)
	if err != nil {
		return nil, err
	}
	migrationURL, err := db.MigrationURL(dbURL)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Running migrations from file://%s\n", dir)
	return migrate.New("file://"+dir, migrationURL)
}
