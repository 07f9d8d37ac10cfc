package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veritaxlabs/pintae_backend/config"
)

var rootCmd = &cobra.Command{
	Use:   "pintctl",
	Short: "PINT AE e-invoice validation toolkit",
	Long: `pintctl runs UAE PINT AE conformance checks over ERP extracts from the
command line: validate CSV datasets, analyze field mapping coverage, inspect
the controls registry and watch a directory for re-validation on change.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
