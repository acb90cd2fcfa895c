package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/supportdesk/internal/cli"
	"github.com/cloo-solutions/supportdesk/internal/cli/admin"
)

var version = "dev"

func main() {
	rootCmd := admin.NewRootCmd(version)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
