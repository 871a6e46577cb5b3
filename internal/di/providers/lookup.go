package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/logger"
	"github.com/listenupapp/readlog/internal/lookup"
	"github.com/listenupapp/readlog/internal/lookup/openlibrary"
	"github.com/listenupapp/readlog/internal/resolve"
)

// LookupHandle wraps the configured metadata provider.
type LookupHandle struct {
	lookup.Provider
	client *openlibrary.Client
}

// Shutdown implements do.Shutdownable.
func (h *LookupHandle) Shutdown() error {
	if h.client != nil {
		h.client.Close()
	}
	return nil
}

// ProvideLookup provides the metadata provider selected in config.
func ProvideLookup(i do.Injector) (*LookupHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Lookup.Provider == config.ProviderNone {
		log.Info("metadata lookup disabled")
		return &LookupHandle{Provider: lookup.None{}}, nil
	}

	client := openlibrary.New(openlibrary.Options{
		BaseURL:           cfg.Lookup.BaseURL,
		Timeout:           cfg.Lookup.Timeout,
		RequestsPerSecond: cfg.Lookup.RequestsPerSecond,
		Burst:             cfg.Lookup.Burst,
		MaxRetries:        cfg.Lookup.MaxRetries,
	}, log.WithComponent("openlibrary").Logger)

	log.Info("metadata lookup initialized",
		"provider", cfg.Lookup.Provider,
		"base_url", cfg.Lookup.BaseURL,
		"rps", cfg.Lookup.RequestsPerSecond,
	)

	return &LookupHandle{Provider: client, client: client}, nil
}

// ProvideResolver provides the import resolution pipeline.
func ProvideResolver(i do.Injector) (*resolve.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	lookupHandle := do.MustInvoke[*LookupHandle](i)

	return resolve.New(lookupHandle.Provider, log.WithComponent("resolve").Logger, resolve.Options{
		Concurrency: cfg.Lookup.Concurrency,
		Timeout:     cfg.Lookup.Timeout,
	}), nil
}
