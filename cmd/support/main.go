package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/supportdesk/internal/cli"
	"github.com/cloo-solutions/supportdesk/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := client.NewRootCmd(version)

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
