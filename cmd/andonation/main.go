package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "andonation",
		Short:        "Andonation donation campaigns web app",
		SilenceUsage: true,
	}
	serve := newServeCmd()
	root.AddCommand(serve, newProvisionCmd(), newGrantRoleCmd())
	// Running the bare binary starts the server.
	root.RunE = serve.RunE

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
