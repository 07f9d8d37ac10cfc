package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veritaxlabs/pintae_backend/utils"
	"github.com/veritaxlabs/pintae_backend/workflow"
)

var controlsJSONOut string

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Show the controls registry and its DR coverage",
	Args:  cobra.NoArgs,
	RunE:  runControls,
}

func init() {
	controlsCmd.Flags().StringVar(&controlsJSONOut, "json", "", "write the controls evidence to this JSON file")
	rootCmd.AddCommand(controlsCmd)
}

func runControls(cmd *cobra.Command, args []string) error {
	evidence := workflow.BuildControlsEvidence()

	fmt.Printf("registry %s\n", evidence.RegistryVersion)
	for _, ctl := range evidence.Controls {
		fmt.Printf("%s  [%s]  %s\n", ctl.Id, ctl.ControlType, ctl.Name)
		fmt.Printf("  rules: %s\n", strings.Join(ctl.CoveredRules, ", "))
		fmt.Printf("  drs:   %s\n", strings.Join(ctl.CoveredDRIds, ", "))
	}
	fmt.Printf("covered DRs: %d  uncovered DRs: %d\n",
		len(evidence.CoveredDRIds), len(evidence.UncoveredDRIds))
	if len(evidence.UncoveredDRIds) > 0 {
		fmt.Printf("  uncovered: %s\n", strings.Join(evidence.UncoveredDRIds, ", "))
	}

	if controlsJSONOut != "" {
		if err := utils.WriteJSONFile(controlsJSONOut, evidence); err != nil {
			return fmt.Errorf("writing JSON evidence: %w", err)
		}
		fmt.Printf("evidence written to %s\n", controlsJSONOut)
	}
	return nil
}
