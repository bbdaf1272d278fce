package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helpdesk-kit/helpdesk/internal/cli/checksla"
	"github.com/helpdesk-kit/helpdesk/internal/cli/createuser"
	"github.com/helpdesk-kit/helpdesk/internal/cli/migrate"
	"github.com/helpdesk-kit/helpdesk/internal/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "helpdeskctl",
		Short:        "Helpdesk administration",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		checksla.NewCommand(),
		createuser.NewCommand(),
		migrate.NewCommand(),
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
