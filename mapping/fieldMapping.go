package mapping

import (
	"github.com/veritaxlabs/pintae_backend/registry"
	"github.com/veritaxlabs/pintae_backend/transform"
)

// FieldMapping associates one ERP export column with a registry field.
// SampleValues carries a preview of the column, in source row order, used
// only by coverage and sample validation.
type FieldMapping struct {
	ErpColumn       string                     `json:"erp_column" yaml:"erp_column" binding:"required"`
	TargetField     registry.Field             `json:"target_field" yaml:"target_field" binding:"required"`
	SampleValues    []string                   `json:"sample_values,omitempty" yaml:"sample_values,omitempty"`
	Transformations []transform.Transformation `json:"transformations,omitempty" yaml:"transformations,omitempty"`
}

// TransformRow applies every mapping's transform chain to one raw row and
// returns the values keyed by target field id. A failing chain falls back to
// the untouched raw value for that mapping only; other mappings on the same
// row are unaffected.
func TransformRow(row map[string]string, mappings []FieldMapping) map[string]string {
	out := make(map[string]string, len(mappings))
	for _, m := range mappings {
		raw := row[m.ErpColumn]
		value, err := transform.Apply(raw, m.Transformations, row)
		if err != nil {
			value = raw
		}
		out[m.TargetField.Id] = value
	}
	return out
}

// MappingStats summarizes a mapping set for dashboards.
type MappingStats struct {
	TotalMappings       int `json:"total_mappings"`
	DistinctTargets     int `json:"distinct_targets"`
	WithTransformations int `json:"with_transformations"`
	WithSampleData      int `json:"with_sample_data"`
}

func SummarizeMappings(mappings []FieldMapping) MappingStats {
	stats := MappingStats{TotalMappings: len(mappings)}
	targets := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		targets[m.TargetField.Id] = true
		if len(m.Transformations) > 0 {
			stats.WithTransformations++
		}
		if len(m.SampleValues) > 0 {
			stats.WithSampleData++
		}
	}
	stats.DistinctTargets = len(targets)
	return stats
}
