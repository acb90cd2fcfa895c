package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage saved server settings",
		Long:  "Save, clear and inspect the server URL and admin key used by support",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save server URL and admin key",
		Long:  "Store --url and --api-key in the global config (~/.config/supportdesk/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, _ := cmd.Flags().GetString("api-key")
			apiURL, _ := cmd.Flags().GetString("url")
			return runAuthLogin(cmd.OutOrStdout(), apiKey, apiURL)
		},
	}
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved settings removed")
			return nil
		},
	}
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which server and key are in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey, _ := cmd.Flags().GetString("api-key")
			apiURL, _ := cmd.Flags().GetString("url")
			outputJSON, _ := cmd.Flags().GetBool("output")
			source, key, url := GetCredentialSource(apiKey, apiURL)
			return printStatus(cmd.OutOrStdout(), source, key, url, outputJSON)
		},
	}
}

func runAuthLogin(out io.Writer, apiKey, apiURL string) error {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	config := &GlobalConfig{
		APIKey: apiKey,
		APIURL: apiURL,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Fprintf(out, "Saved settings for %s\n", apiURL)
	return nil
}

func printStatus(out io.Writer, source CredentialSource, apiKey, apiURL string, outputJSON bool) error {
	if outputJSON {
		status := map[string]interface{}{
			"source":  string(source),
			"api_url": apiURL,
			"admin":   apiKey != "",
		}
		if apiKey != "" {
			status["api_key"] = maskAPIKey(apiKey)
		}
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Source: %s\n", source)
	fmt.Fprintf(out, "API URL: %s\n", apiURL)
	if apiKey == "" {
		fmt.Fprintln(out, "Admin key: not set")
		return nil
	}
	fmt.Fprintf(out, "Admin key: %s\n", maskAPIKey(apiKey))
	return nil
}

func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
