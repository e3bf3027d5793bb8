package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printforge/gcodetag/internal/version"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gcodetag",
	Run: func(_ *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Printf("gcodetag version %s\n", info.Full())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
