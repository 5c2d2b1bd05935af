// Package cli holds the flags and bootstrapping shared by subcommands.
package cli

import (
	"go.uber.org/zap"

	"voicenote/internal/app/logging"
	"voicenote/internal/config"
)

var (
	// ConfigFile is the --config flag.
	ConfigFile string
	// Verbose is the --verbose flag.
	Verbose bool
)

// Bootstrap loads configuration and builds the logger.
func Bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := logging.NewLogger(Verbose || !cfg.IsProduction())
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
