package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/service"
)

// SeedCmd writes the embedded corpus into the database.
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in knowledge into the database",
		Long: `Upsert every built-in knowledge item by id and store the default
landing page settings when none exist yet. Running it twice is harmless.`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}

	cmd.Flags().Bool("no-migrate", false, "Skip migrations before seeding")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	be, err := openBackend(ctx, cfg, log, backendOptions{migrate: !noMigrate, requireDatabase: true})
	if err != nil {
		return err
	}
	defer be.close()

	svc := service.NewAdminService(be.admin, nil, log)
	n, err := svc.Seed(ctx, be.corpus.KnowledgeItems(), be.corpus.Landing)
	if err != nil {
		return fmt.Errorf("failed to seed knowledge after %d items: %w", n, err)
	}

	log.Info("seed complete", zap.Int("items", n))
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d knowledge items\n", n)
	return nil
}
