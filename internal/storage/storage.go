package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects gorm to Postgres through pgx and checks the connection.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	const op = "storage.Open"
	log := slog.With("op", op)

	if dsn == "" {
		return nil, fmt.Errorf("%s: database url is empty", op)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%s: database is unavailable: %w", op, err)
	}
	log.Info("database is available")
	return db, nil
}

func Close(db *gorm.DB) {
	const op = "storage.Close"
	log := slog.With("op", op)

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("failed to get sql db", "err", err)
		return
	}
	log.Info("closing database...")
	if err := sqlDB.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("database is closed")
}
