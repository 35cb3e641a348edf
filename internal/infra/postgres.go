package infra

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tripwise/internal/config"
	"tripwise/internal/models/db_models"
)

func InitPostgresql(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.IsDevelopment() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		slog.Warn("pgvector extension not available", "error", err)
	}

	if err := db.AutoMigrate(
		&db_models.Goal{},
		&db_models.Milestone{},
		&db_models.ItinerarySnapshot{},
		&db_models.DestinationEmbedding{},
	); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	slog.Info("postgres connected")
	return db, nil
}

func ClosePostgresql(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("get postgres handle", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		slog.Error("close postgres", "error", err)
	} else {
		slog.Info("postgres connection closed")
	}
}
