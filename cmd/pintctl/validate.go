package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/veritaxlabs/pintae_backend/checks"
	"github.com/veritaxlabs/pintae_backend/ingest"
	"github.com/veritaxlabs/pintae_backend/models"
	"github.com/veritaxlabs/pintae_backend/models/reports"
	"github.com/veritaxlabs/pintae_backend/utils"
	"github.com/veritaxlabs/pintae_backend/workflow"
)

var (
	validateDirection string
	validateProfile   []string
	validateCustom    string
	validateParallel  bool
	validateJSONOut   string
	validateEvidence  string
	validateFailOn    string
)

var validateCmd = &cobra.Command{
	Use:   "validate <dataset-dir>",
	Short: "Run conformance checks over a CSV dataset",
	Long: `Validate loads buyers.csv, invoice_headers.csv and invoice_lines.csv from
the given directory, runs every built-in check, the UAE UC1 check pack and
any custom checks, and prints the exceptions with a compliance score.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateDirection, "direction", "d", "AR", "transaction direction (AR or AP)")
	validateCmd.Flags().StringSliceVar(&validateProfile, "profile-trn", nil, "organization TRN for the profile check, repeatable")
	validateCmd.Flags().StringVar(&validateCustom, "custom", "", "YAML file with custom check definitions")
	validateCmd.Flags().BoolVar(&validateParallel, "parallel", false, "evaluate checks concurrently")
	validateCmd.Flags().StringVar(&validateJSONOut, "json", "", "write the full run report to this JSON file")
	validateCmd.Flags().StringVar(&validateEvidence, "evidence", "", "write an evidence workbook to this XLSX file")
	validateCmd.Flags().StringVar(&validateFailOn, "fail-on", "critical", "exit nonzero at or above this severity (critical, high, medium, low, none)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	direction, err := models.ParseDirection(validateDirection)
	if err != nil {
		return err
	}

	ds, err := ingest.LoadDataset(args[0])
	if err != nil {
		return err
	}

	var customs []checks.CustomCheckConfig
	if validateCustom != "" {
		customs, err = loadCustomCheckFile(validateCustom)
		if err != nil {
			return err
		}
	}

	var profile *models.OrganizationProfile
	if len(validateProfile) > 0 {
		profile = &models.OrganizationProfile{OurEntityTRNs: utils.UniqueSlice(validateProfile)}
	}

	report, err := workflow.ExecuteCheckRun(workflow.RunRequest{
		Direction:     direction,
		Buyers:        ds.Buyers,
		Headers:       ds.Headers,
		Lines:         ds.Lines,
		Profile:       profile,
		CustomConfigs: customs,
		Parallel:      validateParallel,
	})
	if err != nil {
		return err
	}

	printRunReport(report)

	if validateJSONOut != "" {
		if err := utils.WriteJSONFile(validateJSONOut, report); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
		fmt.Printf("report written to %s\n", validateJSONOut)
	}
	if validateEvidence != "" {
		pack := reports.EvidencePack{
			Run:          report.Run,
			Exceptions:   report.Exceptions,
			EntityScores: report.EntityScores,
		}
		if err := reports.ExportEvidenceXlsx(pack, validateEvidence); err != nil {
			return fmt.Errorf("writing evidence workbook: %w", err)
		}
		fmt.Printf("evidence written to %s\n", validateEvidence)
	}

	return failOnThreshold(report.Run, validateFailOn)
}

// loadCustomCheckFile reads a YAML list of custom check definitions.
func loadCustomCheckFile(path string) ([]checks.CustomCheckConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var configs []checks.CustomCheckConfig
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return configs, nil
}

func printRunReport(report *workflow.RunReport) {
	run := report.Run
	fmt.Printf("run %s  direction=%s  invoices=%d  exceptions=%d  score=%d\n",
		run.Id, run.Direction, run.TotalInvoices, run.TotalExceptions, run.Score)
	fmt.Printf("severity: critical=%d high=%d medium=%d low=%d\n",
		run.CriticalCount, run.HighCount, run.MediumCount, run.LowCount)

	for _, ex := range report.Exceptions {
		ref := ex.InvoiceId
		if ref == "" {
			ref = "-"
		}
		fmt.Printf("  [%s] %s  invoice=%s  field=%s  %s\n",
			ex.Severity, ex.RuleId, ref, ex.Field, ex.Message)
	}
}

// failOnThreshold turns exception counts into an exit error so CI pipelines
// can gate on severity.
func failOnThreshold(run *models.CheckRun, threshold string) error {
	var count int
	switch strings.ToLower(strings.TrimSpace(threshold)) {
	case "none":
		return nil
	case "critical":
		count = run.CriticalCount
	case "high":
		count = run.CriticalCount + run.HighCount
	case "medium":
		count = run.CriticalCount + run.HighCount + run.MediumCount
	case "low":
		count = run.TotalExceptions
	default:
		return fmt.Errorf("invalid --fail-on value %q", threshold)
	}
	if count > 0 {
		return fmt.Errorf("%d exception(s) at or above %s severity", count, threshold)
	}
	return nil
}
