package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/registry"
	"github.com/veritaxlabs/pintae_backend/transform"
)

type ValidationStatus string

const (
	ValidationPass    ValidationStatus = "pass"
	ValidationWarning ValidationStatus = "warning"
	ValidationError   ValidationStatus = "error"
)

// SampleValidationResult is one finding for one mapped column. A column with
// no findings gets exactly one pass row; a column with several problems gets
// one row per problem and no pass row.
type SampleValidationResult struct {
	ErpColumn string           `json:"erp_column"`
	FieldId   string           `json:"field_id"`
	Status    ValidationStatus `json:"status"`
	Message   string           `json:"message"`
}

var sampleDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`),
	regexp.MustCompile(`^[0-9]{2}/[0-9]{2}/[0-9]{4}$`),
	regexp.MustCompile(`^[0-9]{2}-[0-9]{2}-[0-9]{4}$`),
	regexp.MustCompile(`^[0-9]{1,2}/[0-9]{1,2}/[0-9]{2,4}$`),
}

// ValidateMappedData runs structural validation over each mapping's sample
// values after applying its transform chain. Empty values only ever surface
// through the mandatory-field warning; every other test skips them.
func ValidateMappedData(mappings []FieldMapping) []SampleValidationResult {
	results := make([]SampleValidationResult, 0, len(mappings))
	for _, m := range mappings {
		results = append(results, validateMapping(m)...)
	}
	return results
}

func validateMapping(m FieldMapping) []SampleValidationResult {
	values := make([]string, 0, len(m.SampleValues))
	nonEmpty := 0
	for _, raw := range m.SampleValues {
		v, err := transform.Apply(raw, m.Transformations, nil)
		if err != nil {
			v = raw
		}
		v = strings.TrimSpace(v)
		values = append(values, v)
		if v != "" {
			nonEmpty++
		}
	}

	var findings []SampleValidationResult
	addFinding := func(status ValidationStatus, message string) {
		findings = append(findings, SampleValidationResult{
			ErpColumn: m.ErpColumn,
			FieldId:   m.TargetField.Id,
			Status:    status,
			Message:   message,
		})
	}

	if m.TargetField.Mandatory && nonEmpty < len(values) {
		status := ValidationWarning
		if config.StrictMandatoryEnforcement() {
			status = ValidationError
		}
		addFinding(status,
			fmt.Sprintf("%d empty value(s) in %d sample value(s)", len(values)-nonEmpty, len(values)))
	}

	if m.TargetField.Format != "" {
		if re, err := regexp.Compile(m.TargetField.Format); err == nil {
			mismatches := 0
			for _, v := range values {
				if v != "" && !re.MatchString(v) {
					mismatches++
				}
			}
			if mismatches > 0 {
				addFinding(ValidationError,
					fmt.Sprintf("%d value(s) do not match pattern %s", mismatches, m.TargetField.Format))
			}
		}
	}

	if len(m.TargetField.AllowedValues) > 0 {
		allowed := make(map[string]bool, len(m.TargetField.AllowedValues))
		for _, av := range m.TargetField.AllowedValues {
			allowed[av] = true
		}
		outside := 0
		for _, v := range values {
			if v != "" && !allowed[v] {
				outside++
			}
		}
		if outside > 0 {
			addFinding(ValidationError,
				fmt.Sprintf("%d value(s) outside allowed values %v", outside, m.TargetField.AllowedValues))
		}
	}

	if m.TargetField.DataType == registry.DataTypeNumber {
		nonNumeric := 0
		for _, v := range values {
			if v == "" {
				continue
			}
			clean := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if _, err := decimal.NewFromString(clean); err != nil {
				nonNumeric++
			}
		}
		if nonNumeric > 0 {
			addFinding(ValidationError, fmt.Sprintf("%d non-numeric value(s)", nonNumeric))
		}
	}

	if m.TargetField.DataType == registry.DataTypeDate {
		unrecognized := 0
		for _, v := range values {
			if v == "" {
				continue
			}
			if !matchesAnyDatePattern(v) {
				unrecognized++
			}
		}
		if unrecognized > 0 {
			addFinding(ValidationWarning,
				fmt.Sprintf("%d value(s) not in a recognized date format", unrecognized))
		}
	}

	if len(findings) == 0 {
		addFinding(ValidationPass, "all sample values conform")
	}
	return findings
}

func matchesAnyDatePattern(v string) bool {
	for _, re := range sampleDatePatterns {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}
