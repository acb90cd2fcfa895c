package client

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/supportdesk/internal/cli"
)

// NewRootCmd builds the support command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "support",
		Short: "Support desk client",
		Long: `support talks to a running supportd over HTTP.

Environment variables:
  SUPPORT_URL       server URL (default: http://localhost:8080)
  SUPPORT_API_KEY   admin key for candidates and snippet commands`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("url", "", "Server URL (overrides env and saved settings)")
	rootCmd.PersistentFlags().String("api-key", "", "Admin API key (overrides env and saved settings)")
	cli.AnnotateEnv(rootCmd.PersistentFlags().Lookup("url"), envAPIURL)
	cli.AnnotateEnv(rootCmd.PersistentFlags().Lookup("api-key"), envAPIKey)
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(AskCmd())
	rootCmd.AddCommand(ChatCmd())
	rootCmd.AddCommand(EmotionCmd())
	rootCmd.AddCommand(CandidatesCmd())
	rootCmd.AddCommand(SnippetCmd())
	rootCmd.AddCommand(AuthCmd())

	return rootCmd
}
