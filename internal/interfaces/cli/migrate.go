package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medmuse/medmuse-backend/internal/config"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/database/postgres"
	"github.com/medmuse/medmuse-backend/internal/infrastructure/monitoring/logging"
)

// NewMigrateCmd creates the migrate command, which applies database
// migrations directly instead of going through the API server.
func NewMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply pending schema migrations to the configured database.\nReads the same configuration as the API server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg, err = config.LoadFromEnv()
			}
			if err != nil {
				return err
			}

			logger, err := logging.NewLogger(logging.Config{
				Level:  cfg.Log.Level,
				Format: "console",
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			if err := postgres.Migrate(cfg.Database, logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path (default: environment variables)")
	return cmd
}
