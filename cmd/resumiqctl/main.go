// Command resumiqctl runs maintenance tasks against a Resumiq database:
// schema migration, feedback export, session reports and development tokens.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configFile string

func newRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           "resumiqctl",
		Short:         "Maintenance commands for the Resumiq backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	command.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./resumiqctl.yaml or $HOME/.config/resumiq/resumiqctl.yaml)")

	command.AddCommand(
		newMigrateCommand(),
		newExportFeedbackCommand(),
		newFeedbackStatsCommand(),
		newReportCommand(),
		newTokenCommand(),
	)
	return command
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
