package workflow

import (
	"github.com/sirupsen/logrus"

	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/mapping"
)

// CoverageReport bundles both coverage modes with sample validation so UI
// callers make one request per mapping set.
type CoverageReport struct {
	Legacy     mapping.CoverageAnalysis         `json:"legacy"`
	Registry   mapping.RegistryCoverageResult   `json:"registry"`
	Validation []mapping.SampleValidationResult `json:"validation"`
	Stats      mapping.MappingStats             `json:"stats"`
}

// AnalyzeMappingSet computes coverage and validates sample data for one
// mapping set. Registry coverage is the authoritative readiness signal.
func AnalyzeMappingSet(mappings []mapping.FieldMapping) *CoverageReport {
	report := &CoverageReport{
		Legacy:     mapping.AnalyzeCoverage(mappings),
		Registry:   mapping.AnalyzeRegistryCoverage(mappings),
		Validation: mapping.ValidateMappedData(mappings),
		Stats:      mapping.SummarizeMappings(mappings),
	}

	config.GetLogger().WithFields(logrus.Fields{
		"mappings":  report.Stats.TotalMappings,
		"mandatory": report.Registry.MandatoryCoverage,
		"overall":   report.Registry.OverallCoverage,
		"ready":     report.Registry.IsReadyForActivation,
	}).Info("mapping coverage analyzed")
	return report
}
