// Package main implements the soligraph CLI.
// It provides commands for analyzing Solidity contracts, inspecting
// their syntax trees, and exporting data-flow graphs.
package main

import (
	"os"

	"github.com/soligraph/soligraph/cmd/soligraph/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`soligraph version {{.Version}}
`)

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
