package mysql

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations. It is a no-op when the
// schema is current.
func (s *Storage) Migrate() error {
	const op = "storage.mysql.Migrate"

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%s: source: %w", op, err)
	}

	drv, err := migratemysql.WithInstance(s.db, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("%s: driver: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", drv)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}
	return nil
}
