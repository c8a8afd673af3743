// Package di provides dependency injection configuration for the humidor server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/humidorapp/humidor-server/internal/auth"
	"github.com/humidorapp/humidor-server/internal/config"
	"github.com/humidorapp/humidor-server/internal/di/providers"
	"github.com/humidorapp/humidor-server/internal/metrics"
	"github.com/humidorapp/humidor-server/internal/service"
	"github.com/humidorapp/humidor-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage and events
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideMetrics)

	// Auth layer
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Business services
	do.Provide(injector, providers.ProvideTastingService)
	do.Provide(injector, providers.ProvideInventoryService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideImportService)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services, starting the HTTP server last.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*metrics.Metrics](injector)
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.TastingService](injector)
	_ = do.MustInvoke[*service.InventoryService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)

	// Server
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}

// NewToolContainer wires the subset used by offline tools: config and
// logger are supplied by the caller, and nothing listens or streams.
func NewToolContainer(cfg *config.Config, log *slog.Logger) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideBackupService)

	return injector
}
