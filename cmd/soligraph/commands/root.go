// Package commands provides the CLI commands for the soligraph tool.
package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "soligraph",
	Short: "soligraph - Solidity data-flow graph extraction",
	Long: `soligraph parses Solidity smart contracts and extracts filtered
data-flow graphs suitable for downstream analysis.

Commands:
  analyze     Analyze a file or directory and write graph documents
  ast         Print the typed syntax tree of a contract
  dfg         Print the data-flow graph of a contract to stdout
  init        Create a configuration file interactively

Use "soligraph [command] --help" for more information about a command.`,
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
