package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/teamvault/internal/database"
)

// RunMigrations applies every pending migration for driver. The memory driver has no schema
// and is a no-op.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	if driver == database.DriverMemory {
		logger.Info("memory driver selected, nothing to migrate")
		return nil
	}

	logger.Info("running database migrations", slog.String("driver", driver))

	migrationsPath := "file://migrations/postgresql"
	if driver == database.DriverMySQL {
		migrationsPath = "file://migrations/mysql"
		// golang-migrate selects its driver from the URL scheme.
		connectionString = "mysql://" + connectionString
	}

	m, err := migrate.New(migrationsPath, connectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
