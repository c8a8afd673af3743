package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/humidorapp/humidor-server/internal/backup"
	"github.com/humidorapp/humidor-server/internal/config"
	"github.com/humidorapp/humidor-server/internal/domain"
	"github.com/humidorapp/humidor-server/internal/metrics"
	"github.com/humidorapp/humidor-server/internal/ratelimit"
	"github.com/humidorapp/humidor-server/internal/recommend"
	"github.com/humidorapp/humidor-server/internal/service"
	"github.com/humidorapp/humidor-server/internal/validation"
)

// ProvideValidator provides the shared struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideMetrics provides the Prometheus registry and collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	m := metrics.New()
	m.RegisterGauge("humidor_sse_clients", "Connected event stream clients.", func() float64 {
		return float64(sseHandle.ClientCount())
	})
	return m, nil
}

// RateLimiterHandle wraps the keyed limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-caller API rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	}, nil
}

// ProvideTastingService provides the tasting lifecycle service.
func ProvideTastingService(i do.Injector) (*service.TastingService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewTastingService(storeHandle.Store, sseHandle.Manager, v, m, service.TastingOptions{
		Policy:     service.TastingPolicy(cfg.Tasting.Policy),
		ReviewMode: domain.ReviewMode(cfg.Tasting.ReviewMode),
	}, log), nil
}

// ProvideInventoryService provides the inventory service.
func ProvideInventoryService(i do.Injector) (*service.InventoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewInventoryService(storeHandle.Store, sseHandle.Manager, v, log), nil
}

// ProvideStatsService provides statistics, history and recommendations.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewStatsService(storeHandle.Store, recommend.FlavorOverlap{}, log), nil
}

// ProvideImportService provides the browser export importer.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewImportService(storeHandle.Store, v, log), nil
}

// ProvideBackupService provides per-user export and restore.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return backup.NewService(storeHandle.Store, log), nil
}
