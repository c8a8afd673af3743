package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/humidorapp/humidor-server/internal/config"
	"github.com/humidorapp/humidor-server/internal/sse"
	"github.com/humidorapp/humidor-server/internal/store"
	"github.com/humidorapp/humidor-server/internal/store/badger"
	"github.com/humidorapp/humidor-server/internal/store/postgres"
	"github.com/humidorapp/humidor-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*slog.Logger](i)

	manager := sse.NewManager(log)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the configured store backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	st, err := OpenStore(context.Background(), cfg.Store, log)
	if err != nil {
		return nil, err
	}

	log.Info("Store initialized", "driver", st.Driver(), "data_path", cfg.Store.DataPath)

	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the backend named by cfg.Driver. Local backends live
// under cfg.DataPath, which is created if missing.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverBadger, config.DriverSQLite:
		if cfg.DataPath == "" {
			return nil, fmt.Errorf("%s store needs a data path", cfg.Driver)
		}
		if err := os.MkdirAll(cfg.DataPath, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.Driver {
	case config.DriverBadger:
		st, err = badger.Open(filepath.Join(cfg.DataPath, "badger"), log)
	case config.DriverSQLite:
		st, err = sqlite.Open(filepath.Join(cfg.DataPath, "humidor.db"), log)
	case config.DriverPostgres:
		st, err = postgres.Open(ctx, cfg.PostgresDSN, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	return st, nil
}
