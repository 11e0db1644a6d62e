package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gitlab.com/dirk.krummacker/contacts-book/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationURL returns the database URL in the form golang-migrate expects.
func MigrationURL(cfg config.Database) string {
	c := MySQLConfig(cfg)
	c.MultiStatements = true
	return "mysql://" + c.FormatDSN()
}

// NewMigrator returns a migrate instance working on the embedded migration files.
func NewMigrator(cfg config.Database) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, MigrationURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending migrations. It returns without error if the schema is
// already up to date.
func RunMigrations(cfg config.Database) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	slog.Info("database schema is up to date", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}
