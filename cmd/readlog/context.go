package main

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/di"
	"github.com/listenupapp/readlog/internal/service"
)

// commandContext lazily builds the DI container on first use so --help and
// flag errors never touch the database.
type commandContext struct {
	flags  config.Flags
	userID string

	injector *do.RootScope
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureContainer() (*do.RootScope, error) {
	if c.injector != nil {
		return c.injector, nil
	}

	cfg, err := config.Load(&c.flags)
	if err != nil {
		return nil, err
	}
	if c.flags.LogLevel == "" {
		// Keep the terminal for results unless asked otherwise.
		cfg.Logger.Level = "warn"
	}

	injector := di.NewContainer(cfg)
	if err := di.Bootstrap(injector); err != nil {
		injector.Shutdown()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	c.injector = injector
	return injector, nil
}

func (c *commandContext) finished() (*service.FinishedService, error) {
	injector, err := c.ensureContainer()
	if err != nil {
		return nil, err
	}
	return do.Invoke[*service.FinishedService](injector)
}

func (c *commandContext) imports() (*service.ImportService, error) {
	injector, err := c.ensureContainer()
	if err != nil {
		return nil, err
	}
	return do.Invoke[*service.ImportService](injector)
}

func (c *commandContext) exports() (*service.ExportService, error) {
	injector, err := c.ensureContainer()
	if err != nil {
		return nil, err
	}
	return do.Invoke[*service.ExportService](injector)
}

func (c *commandContext) close() {
	if c.injector == nil {
		return
	}
	c.injector.Shutdown()
	c.injector = nil
}
