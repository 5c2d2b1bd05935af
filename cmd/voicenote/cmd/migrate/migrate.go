package migrate

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voicenote/cmd/voicenote/cmd/cli"
	"voicenote/internal/app"
	"voicenote/internal/config"
)

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long:  `Create the user, account, session and transcriptions tables if they do not exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := cli.Bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := config.ValidateDriver(cfg.Database.Driver); err != nil {
			return err
		}

		// the store migrates on open
		_, cleanup, err := app.InitializeStore(cfg, logger)
		if err != nil {
			logger.Error("Migration failed", zap.Error(err))
			return err
		}
		cleanup()

		logger.Info("Migration complete", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
