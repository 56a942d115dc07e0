package postgres

import (
	"errors"

	"github.com/aussiebroadwan/leadflow/internal/intake/store/drivers/postgres/migrations"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations runs the embedded migrations up to the latest version.
func (s *Store) ApplyMigrations() error {
	driver, err := migratepgx.WithInstance(s.DB(), &migratepgx.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
