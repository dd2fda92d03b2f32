package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/config"
)

// Migrate applies pending schema migrations from cfg.MigrationsPath.
// It opens a dedicated database/sql connection for the run so the pgx
// pool never carries DDL. Idempotent: an up-to-date schema is not an
// error.
func Migrate(cfg *config.DatabaseConfig, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("failed to close migration database", zap.Error(dbErr))
		}
	}()

	switch err := m.Up(); {
	case err == nil:
		version, _, _ := m.Version()
		logger.Info("schema migrated", zap.Uint("version", version))
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema up to date")
	default:
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
