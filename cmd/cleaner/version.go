package main

import (
	"github.com/spf13/cobra"

	"bizreport/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// Runs without configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			info := contracts.GetVersionInfo()
			cmd.Printf("cleaner version %s (data format %s, commit %s)\n", info.Version, info.DataFormat, info.GitCommit)
		},
	}
}
