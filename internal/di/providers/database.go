package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/logger"
	"github.com/listenupapp/readlog/internal/store/sqlstore"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the database and applies the schema.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	// Spans from the store go to whichever provider is installed first.
	_ = do.MustInvoke[*TracerProviderHandle](i)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	st, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("database initialized", "driver", cfg.Database.Driver)

	return &StoreHandle{Store: st}, nil
}
