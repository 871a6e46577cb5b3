package di

import (
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/di/providers"
	"github.com/listenupapp/readlog/internal/lookup"
	"github.com/listenupapp/readlog/internal/lookup/openlibrary"
	"github.com/listenupapp/readlog/internal/service"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(&config.Flags{
		DBDSN:   filepath.Join(t.TempDir(), "di.db"),
		Lookup:  config.ProviderNone,
		EnvFile: "",
	})
	require.NoError(t, err)
	cfg.Logger.Level = "error"
	return cfg
}

func TestBootstrap(t *testing.T) {
	injector := NewContainer(testConfig(t))
	t.Cleanup(func() { injector.Shutdown() })
	require.NoError(t, Bootstrap(injector))

	finished := do.MustInvoke[*service.FinishedService](injector)
	entries, err := finished.List(t.Context(), "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)

	handle := do.MustInvoke[*providers.LookupHandle](injector)
	assert.IsType(t, lookup.None{}, handle.Provider)

}

func TestBootstrap_OpenLibraryProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Lookup.Provider = config.ProviderOpenLibrary

	injector := NewContainer(cfg)
	t.Cleanup(func() { injector.Shutdown() })
	require.NoError(t, Bootstrap(injector))

	handle := do.MustInvoke[*providers.LookupHandle](injector)
	assert.IsType(t, &openlibrary.Client{}, handle.Provider)

}

func TestBootstrap_BadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = config.DriverPostgres
	cfg.Database.DSN = "postgres://127.0.0.1:1/readlog?sslmode=disable&connect_timeout=1"

	injector := NewContainer(cfg)
	t.Cleanup(func() { injector.Shutdown() })
	assert.Error(t, Bootstrap(injector))
}
