package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readlog/internal/api"
	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/logger"
	"github.com/listenupapp/readlog/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer builds the API and starts listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Finished: do.MustInvoke[*service.FinishedService](i),
		Imports:  do.MustInvoke[*service.ImportService](i),
		Exports:  do.MustInvoke[*service.ExportService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
	}, log.WithComponent("api").Logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		srvLog := log.WithField("addr", srv.Addr)
		srvLog.Info("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvLog.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
