// Package di provides dependency injection configuration for the readlog server and CLI.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/di/providers"
	"github.com/listenupapp/readlog/internal/logger"
	"github.com/listenupapp/readlog/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// The HTTP server is registered but only started when invoked.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideTracerProvider)

	// Persistence
	do.Provide(injector, providers.ProvideStore)

	// Import resolution
	do.Provide(injector, providers.ProvideLookup)
	do.Provide(injector, providers.ProvideResolver)

	// Business services
	do.Provide(injector, providers.ProvideFinishedService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideExportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the core services. It does not start the HTTP server.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.TracerProviderHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.FinishedService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ImportService](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*service.ExportService](injector)
	return err
}
