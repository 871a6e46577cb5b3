// Package providers contains dependency injection providers for readlog.
package providers

import (
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/readlog/internal/config"
	"github.com/listenupapp/readlog/internal/logger"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
const shutdownTimeout = 30 * time.Second

// ProvideLogger provides the structured logger. It writes to stderr so the
// CLI can keep stdout for data.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Format:      cfg.Logger.Format,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("logger initialized",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
	)

	return log, nil
}
