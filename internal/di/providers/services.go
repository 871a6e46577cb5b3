package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/readlog/internal/logger"
	"github.com/listenupapp/readlog/internal/resolve"
	"github.com/listenupapp/readlog/internal/service"
)

// ProvideFinishedService provides the reading-log service.
func ProvideFinishedService(i do.Injector) (*service.FinishedService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFinishedService(storeHandle.Store, log.WithComponent("finished").Logger), nil
}

// ProvideImportService provides the import parse/commit service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*resolve.Resolver](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, resolver, log.WithComponent("imports").Logger), nil
}

// ProvideExportService provides the export service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	finished := do.MustInvoke[*service.FinishedService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(finished, log.WithComponent("exports").Logger), nil
}
