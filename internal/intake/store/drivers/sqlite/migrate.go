package sqlite

import (
	"errors"

	"github.com/aussiebroadwan/leadflow/internal/intake/store/drivers/sqlite/migrations"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations runs the embedded migrations up to the latest version.
func (s *Store) ApplyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.DB(), &migratesqlite.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
