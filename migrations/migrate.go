// Package migrations applies the SQLite schema for the memories store.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// RunMigrations brings the schema up to date from the migration files in dir.
// Already-applied migrations are skipped.
func RunMigrations(db *sql.DB, dir string, logger zerolog.Logger) error {
	log := logger.With().Str("component", "migrations").Logger()

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare sqlite driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to load migrations from %q: %w", dir, err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug().Str("path", dir).Msg("Schema already up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	default:
		version, _, _ := m.Version()
		log.Info().Str("path", dir).Uint("version", version).Msg("Schema migrations applied")
	}
	return nil
}
