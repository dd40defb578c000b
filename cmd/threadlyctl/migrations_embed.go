//go:build !file_migrations

package main

import (
	"github.com/golang-migrate/migrate/v4"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/db"
)

func createMigrateInstance(dbURL string) (*migrate.Migrate, error) {
	src, err := db.EmbeddedMigrations(dbURL)
	if err != nil {
		return nil, err
	}
	return db.NewMigrator(src, dbURL)
}
