package db

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/taskroom/taskroom/internal/config"
	"github.com/taskroom/taskroom/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

func New(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres", "":
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("database.dsn is required for postgres")
		}
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dsn := cfg.Database.DSN
		if dsn == "" {
			dsn = "taskroom.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	d, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		// a single connection keeps in-memory databases coherent and avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return d, nil
}

// Migrate creates or updates the schema for every persisted model.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.Notification{},
		&model.Message{},
	)
}

// RegisterOpenTelemetryPlugin emits a span per query through the global tracer provider.
func RegisterOpenTelemetryPlugin(d *gorm.DB) error {
	return d.Use(tracing.NewPlugin(tracing.WithoutQueryVariables()))
}

func Close(d *gorm.DB) error {
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
