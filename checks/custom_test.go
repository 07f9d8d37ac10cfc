package checks

import (
	"errors"
	"testing"

	"github.com/veritaxlabs/pintae_backend/models"
	"github.com/veritaxlabs/pintae_backend/utils"
)

func TestCompileCustomCheckParameterValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  CustomCheckConfig
	}{
		{"no id", CustomCheckConfig{RuleType: CustomRuleMissing, Parameters: CustomCheckParameters{Field: "x"}}},
		{"no rule type", CustomCheckConfig{Id: "c-1", Parameters: CustomCheckParameters{Field: "x"}}},
		{"unknown rule type", CustomCheckConfig{Id: "c-1", RuleType: "fuzzy"}},
		{"missing without field", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleMissing}},
		{"duplicate without field", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleDuplicate}},
		{"regex without pattern", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleRegex, Parameters: CustomCheckParameters{Field: "x"}}},
		{"math without operator", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleMath, Parameters: CustomCheckParameters{LeftExpression: "a", RightExpression: "b"}}},
		{"math bad operator", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleMath, Parameters: CustomCheckParameters{LeftExpression: "a", Operator: "~", RightExpression: "b"}}},
		{"math bad tolerance", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleMath, Parameters: CustomCheckParameters{LeftExpression: "a", Operator: "=", RightExpression: "b", Tolerance: "lots"}}},
		{"formula wrong arity", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleFormula, Parameters: CustomCheckParameters{Formula: "a = "}}},
		{"bad severity", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleMissing, Severity: "urgent", Parameters: CustomCheckParameters{Field: "x"}}},
		{"bad scope", CustomCheckConfig{Id: "c-1", RuleType: CustomRuleMissing, Parameters: CustomCheckParameters{Field: "x", Scope: "document"}}},
	}
	for _, tc := range cases {
		if _, err := CompileCustomCheck(tc.cfg); !errors.Is(err, utils.ErrorInvalidCheckConfig) {
			t.Errorf("%s: expected ErrorInvalidCheckConfig, got %v", tc.name, err)
		}
	}
}

func TestInactiveCustomCheckRegistersButNeverRuns(t *testing.T) {
	inactive := false
	compiled, err := CompileCustomCheck(CustomCheckConfig{
		Id:         "c-terms",
		RuleType:   CustomRuleMissing,
		IsActive:   &inactive,
		Parameters: CustomCheckParameters{Field: "payment_terms"},
	})
	if err != nil {
		t.Fatalf("inactive config must still compile: %v", err)
	}
	if compiled.Active() {
		t.Fatalf("check should be inactive")
	}

	dc := cleanDataset(t)
	dc.Headers[0].PaymentTerms = ""
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)

	result := compiled.Run(rebuilt, models.DirectionAR)
	if result.CheckId != "c-terms" || len(result.Exceptions) != 0 {
		t.Fatalf("inactive check produced %+v", result)
	}

	// Same config active fires.
	compiled, err = CompileCustomCheck(CustomCheckConfig{
		Id:         "c-terms",
		RuleType:   CustomRuleMissing,
		Parameters: CustomCheckParameters{Field: "payment_terms"},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	result = compiled.Run(rebuilt, models.DirectionAR)
	if len(result.Exceptions) != 1 || result.Exceptions[0].Severity != models.SeverityMedium {
		t.Fatalf("active check produced %+v", result.Exceptions)
	}
}

func TestCustomDuplicateCheck(t *testing.T) {
	dc := cleanDataset(t)
	headers := append([]models.InvoiceHeader{}, dc.Headers...)
	second := dc.Headers[0]
	second.InvoiceId = "inv-002"
	third := dc.Headers[0]
	third.InvoiceId = "inv-003"
	third.InvoiceNumber = "INV-2026-0003"
	headers = append(headers, second, third)
	lines := append([]models.InvoiceLine{}, dc.Lines...)
	for _, inv := range []string{"inv-002", "inv-003"} {
		for _, l := range dc.Lines {
			l.LineId = l.LineId + "-" + inv
			l.InvoiceId = inv
			lines = append(lines, l)
		}
	}
	rebuilt := models.NewDataContext(dc.Buyers, headers, lines)

	compiled, err := CompileCustomCheck(CustomCheckConfig{
		Id:         "c-dup-number",
		RuleType:   CustomRuleDuplicate,
		Severity:   models.SeverityHigh,
		Parameters: CustomCheckParameters{Field: "invoice_number"},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	result := compiled.Run(rebuilt, models.DirectionAR)
	if len(result.Exceptions) != 1 {
		t.Fatalf("duplicate exceptions = %+v", result.Exceptions)
	}
	// Only the second occurrence is flagged, in row order.
	if result.Exceptions[0].InvoiceId != "inv-002" {
		t.Fatalf("flagged wrong row: %+v", result.Exceptions[0])
	}
}

func TestCustomMathCheck(t *testing.T) {
	compiled, err := CompileCustomCheck(CustomCheckConfig{
		Id:       "c-totals",
		RuleType: CustomRuleMath,
		Severity: models.SeverityCritical,
		Parameters: CustomCheckParameters{
			LeftExpression:  "computed_total",
			Operator:        "=",
			RightExpression: "total_incl_vat",
			Tolerance:       "0.05",
		},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	dc := cleanDataset(t)
	if got := compiled.Run(dc, models.DirectionAR); len(got.Exceptions) != 0 {
		t.Fatalf("clean data should pass, got %+v", got.Exceptions)
	}

	dc.Headers[0].TotalInclVAT = d(t, "252.10")
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	got := compiled.Run(rebuilt, models.DirectionAR)
	if len(got.Exceptions) != 1 || got.Exceptions[0].Severity != models.SeverityCritical {
		t.Fatalf("broken data exceptions = %+v", got.Exceptions)
	}
}

func TestCustomMathCheckExpressions(t *testing.T) {
	compiled, err := CompileCustomCheck(CustomCheckConfig{
		Id:       "c-sum",
		RuleType: CustomRuleMath,
		Parameters: CustomCheckParameters{
			LeftExpression:  "total_excl_vat + vat_total",
			Operator:        "=",
			RightExpression: "total_incl_vat",
		},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	dc := cleanDataset(t)
	if got := compiled.Run(dc, models.DirectionAR); len(got.Exceptions) != 0 {
		t.Fatalf("clean data should pass, got %+v", got.Exceptions)
	}
	dc.Headers[0].TotalInclVAT = d(t, "300")
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	if got := compiled.Run(rebuilt, models.DirectionAR); len(got.Exceptions) != 1 {
		t.Fatalf("sum expression exceptions = %+v", got.Exceptions)
	}

	// Literals are valid terms.
	compiled, err = CompileCustomCheck(CustomCheckConfig{
		Id:       "c-nonnegative",
		RuleType: CustomRuleMath,
		Parameters: CustomCheckParameters{
			LeftExpression:  "amount_due",
			Operator:        ">=",
			RightExpression: "0",
		},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	dc = cleanDataset(t)
	dc.Headers[0].AmountDue = d(t, "-5")
	rebuilt = models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	if got := compiled.Run(rebuilt, models.DirectionAR); len(got.Exceptions) != 1 {
		t.Fatalf("literal expression exceptions = %+v", got.Exceptions)
	}

	// An unresolvable term skips the row instead of failing the run.
	compiled, err = CompileCustomCheck(CustomCheckConfig{
		Id:       "c-mystery",
		RuleType: CustomRuleMath,
		Parameters: CustomCheckParameters{
			LeftExpression:  "total_excl_vat + mystery_field",
			Operator:        "=",
			RightExpression: "total_incl_vat",
		},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if got := compiled.Run(cleanDataset(t), models.DirectionAR); len(got.Exceptions) != 0 {
		t.Fatalf("unresolvable term must skip rows, got %+v", got.Exceptions)
	}
}

func TestCustomFormulaCheck(t *testing.T) {
	compiled, err := CompileCustomCheck(CustomCheckConfig{
		Id:         "c-due-cap",
		RuleType:   CustomRuleFormula,
		Parameters: CustomCheckParameters{Formula: "amount_due <= total_incl_vat"},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	dc := cleanDataset(t)
	dc.Headers[0].AmountDue = d(t, "300.00")
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	if got := compiled.Run(rebuilt, models.DirectionAR); len(got.Exceptions) != 1 {
		t.Fatalf("formula exceptions = %+v", got.Exceptions)
	}
}

func TestCustomRegexCheckSwallowsBadPattern(t *testing.T) {
	compiled, err := CompileCustomCheck(CustomCheckConfig{
		Id:         "c-broken-regex",
		RuleType:   CustomRuleRegex,
		Parameters: CustomCheckParameters{Field: "invoice_number", Pattern: "(["},
	})
	if err != nil {
		t.Fatalf("an uncompilable pattern is not a configuration error: %v", err)
	}
	if got := compiled.Run(cleanDataset(t), models.DirectionAR); len(got.Exceptions) != 0 {
		t.Fatalf("bad pattern must be non-matching, got %+v", got.Exceptions)
	}

	// A working pattern flags non-conforming values.
	compiled, err = CompileCustomCheck(CustomCheckConfig{
		Id:         "c-number-shape",
		RuleType:   CustomRuleRegex,
		Parameters: CustomCheckParameters{Field: "invoice_number", Pattern: `^INV-[0-9]{4}-[0-9]{4}$`},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	dc := cleanDataset(t)
	dc.Headers[0].InvoiceNumber = "FREEFORM-1"
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	if got := compiled.Run(rebuilt, models.DirectionAR); len(got.Exceptions) != 1 {
		t.Fatalf("regex exceptions = %+v", got.Exceptions)
	}
}

func TestRunChecksIncludesCustomChecks(t *testing.T) {
	compiled, err := CompileCustomCheck(CustomCheckConfig{
		Id:         "c-po-ref",
		RuleType:   CustomRuleMissing,
		Parameters: CustomCheckParameters{Field: "payment_terms"},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	dc := cleanDataset(t)
	dc.Headers[0].PaymentTerms = ""
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)

	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR, Custom: []*CompiledCheck{compiled}})
	last := results[len(results)-1]
	if last.CheckId != "c-po-ref" || len(last.Exceptions) != 1 {
		t.Fatalf("custom check result = %+v", last)
	}
}
