package models

// Exception is one structural or semantic finding. Exceptions are pure
// values: expected business outcomes of validation, never Go errors.
type Exception struct {
	RuleId    string    `json:"rule_id"`
	Severity  Severity  `json:"severity"`
	Field     string    `json:"field"`
	Message   string    `json:"message"`
	InvoiceId string    `json:"invoice_id,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// CheckResult pairs a check with the exceptions it produced. Exceptions keep
// input row order within one check.
type CheckResult struct {
	CheckId    string      `json:"check_id"`
	Exceptions []Exception `json:"exceptions"`
}

// FlattenExceptions concatenates per-check exception lists in result order.
func FlattenExceptions(results []CheckResult) []Exception {
	var out []Exception
	for _, r := range results {
		out = append(out, r.Exceptions...)
	}
	return out
}

// GroupExceptionsBySeverity buckets exceptions for display and export.
func GroupExceptionsBySeverity(exceptions []Exception) map[Severity][]Exception {
	out := make(map[Severity][]Exception)
	for _, ex := range exceptions {
		out[ex.Severity] = append(out[ex.Severity], ex)
	}
	return out
}

// CountBySeverity tallies critical/high/medium/low in one pass.
func CountBySeverity(exceptions []Exception) (critical, high, medium, low int) {
	for _, ex := range exceptions {
		switch ex.Severity {
		case SeverityCritical:
			critical++
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}
	return
}
