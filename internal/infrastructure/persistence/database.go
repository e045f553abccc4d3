package persistence

import (
	"fmt"

	"github.com/erp/warehouse/internal/domain/catalog"
	"github.com/erp/warehouse/internal/domain/inventory"
	"github.com/erp/warehouse/internal/domain/journal"
	"github.com/erp/warehouse/internal/domain/partner"
	"github.com/erp/warehouse/internal/infrastructure/config"
	"github.com/erp/warehouse/internal/infrastructure/logger"
	"github.com/erp/warehouse/internal/infrastructure/migration"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database holds the database connection
type Database struct {
	DB     *gorm.DB
	Driver string
	logger *zap.Logger
}

// NewDatabase opens the configured store. SQLite is limited to a single connection so an
// in-memory database is shared by every caller and writes are serialized.
func NewDatabase(cfg config.DatabaseConfig, zl *zap.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zl, logger.GormLevel(cfg.LogLevel), cfg.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Driver: cfg.Driver, logger: zl}, nil
}

// Models lists every table owned by the service
func Models() []any {
	return []any{
		&catalog.Category{},
		&catalog.Product{},
		&partner.Supplier{},
		&partner.Customer{},
		&inventory.StockTransaction{},
		&inventory.TransactionLine{},
		&journal.Entry{},
	}
}

// Migrate creates or updates the schema. Postgres runs the versioned SQL migrations; SQLite,
// used for local runs and tests, derives its schema from the models.
func (d *Database) Migrate() error {
	if d.Driver == "postgres" {
		m, err := d.Migrator()
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				d.logger.Warn("Failed to close migrator", zap.Error(err))
			}
		}()
		return m.Up()
	}
	if err := d.DB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Migrator opens the versioned migrations on this connection. Only postgres is supported.
func (d *Database) Migrator() (*migration.Migrator, error) {
	if d.Driver != "postgres" {
		return nil, fmt.Errorf("versioned migrations require postgres, got driver %q", d.Driver)
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return migration.New(sqlDB, d.logger)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
