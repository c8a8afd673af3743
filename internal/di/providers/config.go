// Package providers contains dependency injection providers for the humidor server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/humidorapp/humidor-server/internal/config"
	"github.com/humidorapp/humidor-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*slog.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting humidor server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store", cfg.Store.Driver,
		"data_path", cfg.Store.DataPath,
		"tasting_policy", cfg.Tasting.Policy,
		"review_mode", cfg.Tasting.ReviewMode,
	)

	return log, nil
}
