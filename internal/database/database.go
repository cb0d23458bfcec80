package database

import (
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/logging"
)

// Connect opens Postgres for postgres:// URLs and SQLite (pure Go driver)
// for anything else, e.g. "file:dev.db" or "file:x?mode=memory&cache=shared".
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		logging.Info().Str("driver", "postgres").Msg("connecting to database")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	logging.Info().Str("driver", "sqlite").Str("dsn", dsn).Msg("connecting to database")
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection keeps in-memory
	// databases shared and avoids SQLITE_BUSY under concurrent requests.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.PerformerProfile{},
		&domain.Booking{},
		&domain.Dispute{},
		&domain.Message{},
		&domain.Notification{},
		&domain.Review{},
	)
}
