package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/synthledger/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "synthledger",
		Short:   "Turn institution statements into balanced ledger entries",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newExtractCommand())

	return rootCmd
}
