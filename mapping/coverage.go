package mapping

import "github.com/veritaxlabs/pintae_backend/registry"

// CoverageAnalysis is the legacy coverage shape computed over the flat
// mandatory/optional table. Registry coverage is authoritative; this stays
// for consumers of the old numbers.
type CoverageAnalysis struct {
	MandatoryTotal    int      `json:"mandatory_total"`
	MandatoryMapped   int      `json:"mandatory_mapped"`
	OptionalTotal     int      `json:"optional_total"`
	OptionalMapped    int      `json:"optional_mapped"`
	MandatoryCoverage float64  `json:"mandatory_coverage"`
	TotalCoverage     float64  `json:"total_coverage"`
	MissingMandatory  []string `json:"missing_mandatory"`
}

// AnalyzeCoverage computes legacy coverage. TotalCoverage intentionally
// counts mappings, not distinct targets, to keep the historical shape.
func AnalyzeCoverage(mappings []FieldMapping) CoverageAnalysis {
	mapped := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		mapped[m.TargetField.Id] = true
	}

	analysis := CoverageAnalysis{MissingMandatory: []string{}}
	fields := registry.LegacyUC1Fields()
	for _, f := range fields {
		if f.Required {
			analysis.MandatoryTotal++
			if mapped[f.FieldName] {
				analysis.MandatoryMapped++
			} else {
				analysis.MissingMandatory = append(analysis.MissingMandatory, f.FieldName)
			}
		} else {
			analysis.OptionalTotal++
			if mapped[f.FieldName] {
				analysis.OptionalMapped++
			}
		}
	}

	if analysis.MandatoryTotal == 0 {
		analysis.MandatoryCoverage = 100
	} else {
		analysis.MandatoryCoverage = float64(analysis.MandatoryMapped) / float64(analysis.MandatoryTotal) * 100
	}
	if len(fields) > 0 {
		analysis.TotalCoverage = float64(len(mappings)) / float64(len(fields)) * 100
	}
	return analysis
}

// RegistryCoverageResult is coverage over the full 50-field DR registry,
// keyed by IBT reference rather than internal field id.
type RegistryCoverageResult struct {
	RegistryVersion      string   `json:"registry_version"`
	MandatoryMapped      int      `json:"mandatory_mapped"`
	MandatoryTotal       int      `json:"mandatory_total"`
	ConditionalMapped    int      `json:"conditional_mapped"`
	ConditionalTotal     int      `json:"conditional_total"`
	OverallMapped        int      `json:"overall_mapped"`
	OverallTotal         int      `json:"overall_total"`
	MandatoryCoverage    float64  `json:"mandatory_coverage"`
	ConditionalCoverage  float64  `json:"conditional_coverage"`
	OverallCoverage      float64  `json:"overall_coverage"`
	MissingMandatoryDRs  []string `json:"missing_mandatory_drs"`
	IsReadyForActivation bool     `json:"is_ready_for_activation"`
}

// AnalyzeRegistryCoverage computes authoritative DR coverage from the
// distinct set of mapped IBT references. Readiness requires every mandatory
// DR to be mapped.
func AnalyzeRegistryCoverage(mappings []FieldMapping) RegistryCoverageResult {
	mappedDRs := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if m.TargetField.IBTReference != "" {
			mappedDRs[m.TargetField.IBTReference] = true
		}
	}

	result := RegistryCoverageResult{
		RegistryVersion:     registry.RegistryVersion,
		MissingMandatoryDRs: []string{},
	}
	for _, f := range registry.UC1Fields() {
		result.OverallTotal++
		isMapped := mappedDRs[f.IBTReference]
		if isMapped {
			result.OverallMapped++
		}
		if f.Mandatory {
			result.MandatoryTotal++
			if isMapped {
				result.MandatoryMapped++
			} else {
				result.MissingMandatoryDRs = append(result.MissingMandatoryDRs, f.IBTReference)
			}
		} else {
			result.ConditionalTotal++
			if isMapped {
				result.ConditionalMapped++
			}
		}
	}

	result.MandatoryCoverage = percent(result.MandatoryMapped, result.MandatoryTotal)
	result.ConditionalCoverage = percent(result.ConditionalMapped, result.ConditionalTotal)
	result.OverallCoverage = percent(result.OverallMapped, result.OverallTotal)
	result.IsReadyForActivation = result.MandatoryMapped == result.MandatoryTotal
	return result
}

func percent(part, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(part) / float64(total) * 100
}
