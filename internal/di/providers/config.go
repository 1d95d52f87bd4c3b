// Package providers contains dependency injection providers for the Lexile server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Lexile Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"fonts_dir", cfg.Fonts.LocalDir,
	)

	// Missing integrations degrade single endpoints; the server still starts.
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn("Integrations not configured", "missing", missing)
	}

	return log, nil
}
