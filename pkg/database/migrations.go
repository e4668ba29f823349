package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for golang-migrate
	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/logging"
)

// MigrateIntentStore brings the intent store schema up to date. It opens
// its own short-lived database/sql connection (golang-migrate cannot use
// the pgx pool) and applies pending migrations from migrationsPath.
// Idempotent: an up-to-date store is a no-op.
func MigrateIntentStore(connStr, migrationsPath string, logger *zap.Logger) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("failed to close migration connection",
				zap.String("error", logging.SanitizeError(dbErr)))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("intent store schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to migrate intent store: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("intent store schema migrated", zap.Uint("version", version))
	return nil
}
