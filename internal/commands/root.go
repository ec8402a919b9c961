package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/buildinfo"
)

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	dataDir   string
	assumeYes bool
	verbose   bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "billfold",
		Short:   "Plain-text personal and business finance tracking",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "dir", ".", "data directory")
	rootCmd.PersistentFlags().BoolVar(&opts.assumeYes, "yes", false, "answer yes to confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountCommand(opts))
	rootCmd.AddCommand(newBillsCommand(opts))
	rootCmd.AddCommand(newTxnCommand(opts))
	rootCmd.AddCommand(newTransferCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))

	return rootCmd
}
