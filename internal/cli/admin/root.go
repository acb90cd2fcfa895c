package admin

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/supportdesk/internal/cli"
)

// NewRootCmd builds the supportd command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "supportd",
		Short: "Support desk daemon",
		Long: `supportd runs the support desk API server and its maintenance commands.

Settings are read from SUPPORTDESK_* environment variables and an optional .env file.
Without SUPPORTDESK_DATABASE_URL the built-in knowledge is served from memory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(SeedCmd())
	rootCmd.AddCommand(AskCmd())
	rootCmd.AddCommand(ExpandCmd())

	return rootCmd
}
