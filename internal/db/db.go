package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ovenlog-backend/config"
	"ovenlog-backend/internal/model"
)

// Init initializes the database connection, runs migrations, and applies
// the open-event uniqueness DDL.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.Seed {
		if err := Seed(db); err != nil {
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Migrate runs schema migrations and the defense-in-depth DDL. Exported so
// tests can migrate an in-memory database without full Init.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Manufacturer{},
		&model.EquipmentModel{},
		&model.BoxType{},
		&model.Location{},
		&model.Box{},
		&model.Part{},
		&model.Trak{},
		&model.User{},
		&model.UserAlias{},
		&model.UserBoxSelection{},
		&model.Application{},
		&model.StandardTime{},
		&model.OvenEvent{},
		&model.OnEvent{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// One open oven event per trak, enforced below the application's
	// check-then-write path. The partial index syntax is shared by
	// postgres and sqlite.
	ddl := "CREATE UNIQUE INDEX IF NOT EXISTS idx_oven_events_open_trak " +
		"ON oven_events (trak_id) WHERE time_out IS NULL"
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("open-event index DDL failed: %w", err)
	}
	return nil
}
