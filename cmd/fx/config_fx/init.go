package config_fx

import (
	"log/slog"

	"go.uber.org/fx"

	"tripwise/internal/config"
	"tripwise/internal/logger"
)

var Module = fx.Provide(provideConfig, provideLogger)

func provideConfig() *config.Config {
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
}
