package admin

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/config"
	"github.com/cloo-solutions/supportdesk/internal/database"
	"github.com/cloo-solutions/supportdesk/internal/logger"
)

// MigrateCmd applies or rolls back the database schema.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.PersistentFlags().String("source", migrationsSource, "Migration source URL")

	cmd.AddCommand(migrateDirectionCmd(database.Up, "Apply all pending migrations"))
	cmd.AddCommand(migrateDirectionCmd(database.Down, "Roll back every migration"))

	return cmd
}

func migrateDirectionCmd(dir database.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(dir),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if !cfg.HasDatabase() {
				return fmt.Errorf("SUPPORTDESK_DATABASE_URL is required")
			}
			source, _ := cmd.Flags().GetString("source")
			return database.Migrate(cfg.DatabaseURL, source, dir, log)
		},
	}
}

// loadRuntime reads the configuration and builds the logger for one-shot
// commands.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}
