package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/veritaxlabs/pintae_backend/registry"
)

// Set at build time via ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and registry information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pintctl")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Registry:   %s\n", registry.RegistryVersion)
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
