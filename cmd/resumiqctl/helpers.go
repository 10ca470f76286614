package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/akashvaddapelli/Resumeiq/internal/config"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
	"github.com/akashvaddapelli/Resumeiq/internal/utils"
)

func loadConfig() (*config.ToolConfig, error) {
	cfg, err := config.LoadToolConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger only reports warnings; command output goes to stdout.
func newLogger() *zap.Logger {
	logger, err := utils.NewLogger("development", "warn")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openDatabase connects using cfg. The returned func closes the pool.
func openDatabase(ctx context.Context, cfg *config.ToolConfig, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := repositories.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	return db, func() { _ = sqlDB.Close() }, nil
}
