// Package database opens the postgres pool and applies the schema migrations.
package database

import (
	"embed"
	"errors"
	"fmt"

	"todoapi/backend/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	postgresdriver "github.com/golang-migrate/migrate/v4/database/postgres" // Renomeado para evitar conflito com gorm/driver/postgres
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open conecta ao postgres e configura o pool.
// Writes are single statements, so gorm's implicit transactions are skipped.
func Open(cfg config.DatabaseConfig, development bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if development {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Migrate aplica as migrações SQL embutidas usando golang-migrate.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if db == nil {
		return errors.New("GORM DB instance is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := postgresdriver.WithInstance(sqlDB, &postgresdriver.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres driver for migrate: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}

	log.Info("Applying database migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No new database migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Warn("could not get migration version after applying", zap.Error(err))
	} else {
		log.Info("Database migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

// Close fecha o pool de conexões.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
