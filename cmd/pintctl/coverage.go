package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/veritaxlabs/pintae_backend/mapping"
	"github.com/veritaxlabs/pintae_backend/registry"
	"github.com/veritaxlabs/pintae_backend/utils"
	"github.com/veritaxlabs/pintae_backend/workflow"
)

var (
	coverageJSONOut      string
	coverageRequireReady bool
)

var coverageCmd = &cobra.Command{
	Use:   "coverage <mappings.yaml>",
	Short: "Analyze field mapping coverage against the DR registry",
	Long: `Coverage reads a mapping set from a YAML file, computes legacy and
registry coverage, validates any sample data and reports which mandatory
data requirements are still unmapped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoverage,
}

func init() {
	coverageCmd.Flags().StringVar(&coverageJSONOut, "json", "", "write the full coverage report to this JSON file")
	coverageCmd.Flags().BoolVar(&coverageRequireReady, "require-ready", false, "exit nonzero unless every mandatory DR is mapped")
	rootCmd.AddCommand(coverageCmd)
}

func runCoverage(cmd *cobra.Command, args []string) error {
	mappings, err := loadMappingFile(args[0])
	if err != nil {
		return err
	}

	report := workflow.AnalyzeMappingSet(mappings)
	printCoverageReport(report)

	if coverageJSONOut != "" {
		if err := utils.WriteJSONFile(coverageJSONOut, report); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
		fmt.Printf("report written to %s\n", coverageJSONOut)
	}

	if coverageRequireReady && !report.Registry.IsReadyForActivation {
		return fmt.Errorf("%d mandatory DR(s) unmapped", len(report.Registry.MissingMandatoryDRs))
	}
	return nil
}

// loadMappingFile reads a YAML list of field mappings. A mapping may name
// its target field by id alone; the rest of the descriptor is resolved from
// the registry.
func loadMappingFile(path string) ([]mapping.FieldMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mappings []mapping.FieldMapping
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range mappings {
		tf := &mappings[i].TargetField
		if tf.Id == "" || tf.IBTReference != "" {
			continue
		}
		field, ok := registry.FieldById(tf.Id)
		if !ok {
			return nil, fmt.Errorf("mapping %d (%s): field %q: %w",
				i+1, mappings[i].ErpColumn, tf.Id, utils.ErrorRecordNotFound)
		}
		*tf = *field
	}
	return mappings, nil
}

func printCoverageReport(report *workflow.CoverageReport) {
	reg := report.Registry
	fmt.Printf("registry %s\n", reg.RegistryVersion)
	fmt.Printf("mandatory: %d/%d (%.1f%%)  conditional: %d/%d (%.1f%%)  overall: %d/%d (%.1f%%)\n",
		reg.MandatoryMapped, reg.MandatoryTotal, reg.MandatoryCoverage,
		reg.ConditionalMapped, reg.ConditionalTotal, reg.ConditionalCoverage,
		reg.OverallMapped, reg.OverallTotal, reg.OverallCoverage)
	fmt.Printf("legacy: mandatory %.1f%%  total %.1f%%\n",
		report.Legacy.MandatoryCoverage, report.Legacy.TotalCoverage)

	if reg.IsReadyForActivation {
		fmt.Println("ready for activation")
	} else {
		fmt.Printf("not ready: %d mandatory DR(s) unmapped\n", len(reg.MissingMandatoryDRs))
		for _, drId := range reg.MissingMandatoryDRs {
			fmt.Printf("  missing %s\n", drId)
		}
	}

	for _, v := range report.Validation {
		if v.Status == mapping.ValidationPass {
			continue
		}
		fmt.Printf("  [%s] %s -> %s: %s\n", v.Status, v.ErpColumn, v.FieldId, v.Message)
	}
}
