package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/jask/convolens/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies all embedded up migrations to an open database.
func RunMigrations(db *sql.DB, driver string) error {
	var (
		inst database.Driver
		err  error
	)
	switch driver {
	case config.DriverMattn:
		inst, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case config.DriverModernc:
		inst, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		return fmt.Errorf("migrate: unknown driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, driver, inst)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
