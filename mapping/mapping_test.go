package mapping

import (
	"strings"
	"testing"

	"github.com/veritaxlabs/pintae_backend/registry"
	"github.com/veritaxlabs/pintae_backend/transform"
)

func fieldById(t *testing.T, id string) registry.Field {
	t.Helper()
	f, ok := registry.FieldById(id)
	if !ok {
		t.Fatalf("registry field %q not found", id)
	}
	return *f
}

func TestTransformRowIsolatesFailures(t *testing.T) {
	mappings := []FieldMapping{
		{
			ErpColumn:   "InvDate",
			TargetField: fieldById(t, "invoice_issue_date"),
			Transformations: []transform.Transformation{
				{Type: transform.TransformDateParse, Config: transform.Config{InputFormat: "DD/MM/YYYY"}},
			},
		},
		{
			ErpColumn:   "Curr",
			TargetField: fieldById(t, "invoice_currency_code"),
			Transformations: []transform.Transformation{
				{Type: transform.TransformTrim},
				{Type: transform.TransformUppercase},
			},
		},
	}
	row := map[string]string{"InvDate": "not a date", "Curr": " aed "}

	out := TransformRow(row, mappings)
	if got := out["invoice_issue_date"]; got != "not a date" {
		t.Fatalf("failed chain should fall back to raw value, got %q", got)
	}
	if got := out["invoice_currency_code"]; got != "AED" {
		t.Fatalf("sibling mapping should still transform, got %q", got)
	}
}

func TestTransformRowHappyPath(t *testing.T) {
	mappings := []FieldMapping{
		{
			ErpColumn:   "InvDate",
			TargetField: fieldById(t, "invoice_issue_date"),
			Transformations: []transform.Transformation{
				{Type: transform.TransformDateParse, Config: transform.Config{InputFormat: "DD/MM/YYYY"}},
			},
		},
		{ErpColumn: "InvNo", TargetField: fieldById(t, "invoice_number")},
	}
	out := TransformRow(map[string]string{"InvDate": "05/03/2026", "InvNo": "INV-1001"}, mappings)
	if out["invoice_issue_date"] != "2026-03-05" {
		t.Fatalf("date not transformed: %q", out["invoice_issue_date"])
	}
	if out["invoice_number"] != "INV-1001" {
		t.Fatalf("mapping without transforms should pass value through: %q", out["invoice_number"])
	}
}

func TestAnalyzeCoverageLegacy(t *testing.T) {
	empty := AnalyzeCoverage(nil)
	if empty.MandatoryCoverage != 0 {
		t.Fatalf("no mappings should give 0%% mandatory coverage, got %v", empty.MandatoryCoverage)
	}
	if empty.TotalCoverage != 0 {
		t.Fatalf("no mappings should give 0%% total coverage, got %v", empty.TotalCoverage)
	}
	if len(empty.MissingMandatory) != empty.MandatoryTotal {
		t.Fatalf("every mandatory field should be missing, got %d of %d",
			len(empty.MissingMandatory), empty.MandatoryTotal)
	}

	var mappings []FieldMapping
	for _, lf := range registry.LegacyUC1Fields() {
		if !lf.Required {
			continue
		}
		mappings = append(mappings, FieldMapping{
			ErpColumn:   strings.ToUpper(lf.FieldName),
			TargetField: fieldById(t, lf.FieldName),
		})
	}
	full := AnalyzeCoverage(mappings)
	if full.MandatoryCoverage != 100 {
		t.Fatalf("all mandatory mapped should give 100%%, got %v", full.MandatoryCoverage)
	}
	if full.MandatoryMapped != full.MandatoryTotal {
		t.Fatalf("mapped %d of %d mandatory", full.MandatoryMapped, full.MandatoryTotal)
	}
	if len(full.MissingMandatory) != 0 {
		t.Fatalf("missing mandatory should be empty, got %v", full.MissingMandatory)
	}

	// Total coverage counts mappings, not distinct targets.
	dup := append(mappings, mappings[0])
	if got := AnalyzeCoverage(dup).TotalCoverage; got <= full.TotalCoverage {
		t.Fatalf("duplicate mapping should raise total coverage: %v vs %v", got, full.TotalCoverage)
	}
}

func TestAnalyzeRegistryCoverage(t *testing.T) {
	var mandatory []FieldMapping
	for _, f := range registry.UC1Fields() {
		if f.Mandatory {
			mandatory = append(mandatory, FieldMapping{ErpColumn: f.Id, TargetField: f})
		}
	}

	result := AnalyzeRegistryCoverage(mandatory)
	if result.RegistryVersion != registry.RegistryVersion {
		t.Fatalf("version label = %q", result.RegistryVersion)
	}
	if !result.IsReadyForActivation {
		t.Fatalf("all mandatory DRs mapped but not ready: %+v", result)
	}
	if result.MandatoryCoverage != 100 {
		t.Fatalf("mandatory coverage = %v", result.MandatoryCoverage)
	}
	if result.ConditionalMapped != 0 {
		t.Fatalf("no conditional DRs were mapped, got %d", result.ConditionalMapped)
	}
	if result.OverallTotal != 50 {
		t.Fatalf("overall total = %d, want 50", result.OverallTotal)
	}
	if len(result.MissingMandatoryDRs) != 0 {
		t.Fatalf("missing mandatory DRs: %v", result.MissingMandatoryDRs)
	}

	// Dropping one mandatory mapping flips readiness and names the DR.
	partial := AnalyzeRegistryCoverage(mandatory[1:])
	if partial.IsReadyForActivation {
		t.Fatalf("missing a mandatory DR should block activation")
	}
	if len(partial.MissingMandatoryDRs) != 1 || partial.MissingMandatoryDRs[0] != mandatory[0].TargetField.IBTReference {
		t.Fatalf("missing DRs = %v", partial.MissingMandatoryDRs)
	}

	// Duplicate mappings to the same DR count once.
	dup := append([]FieldMapping{}, mandatory...)
	dup = append(dup, mandatory[0])
	if got := AnalyzeRegistryCoverage(dup).MandatoryMapped; got != result.MandatoryMapped {
		t.Fatalf("duplicate target should not change mapped DR count: %d", got)
	}
}

func TestValidateMappedData(t *testing.T) {
	trn := fieldById(t, "seller_trn")
	typeCode := fieldById(t, "invoice_type_code")
	total := fieldById(t, "total_excluding_vat")
	issueDate := fieldById(t, "invoice_issue_date")
	city := fieldById(t, "buyer_city")

	mappings := []FieldMapping{
		{ErpColumn: "TRN", TargetField: trn, SampleValues: []string{"100000000000001", "", "12345"}},
		{ErpColumn: "DocType", TargetField: typeCode, SampleValues: []string{"380", "999"}},
		{ErpColumn: "Net", TargetField: total, SampleValues: []string{"1,050.00", "abc"}},
		{ErpColumn: "Date", TargetField: issueDate, SampleValues: []string{"2026-03-05", "March 5"}},
		{ErpColumn: "City", TargetField: city, SampleValues: []string{"Dubai", ""}},
	}

	results := ValidateMappedData(mappings)

	byColumn := make(map[string][]SampleValidationResult)
	for _, r := range results {
		byColumn[r.ErpColumn] = append(byColumn[r.ErpColumn], r)
	}

	// TRN column: one empty-value warning plus one pattern error, no pass.
	trnRows := byColumn["TRN"]
	if len(trnRows) != 2 {
		t.Fatalf("TRN rows = %+v", trnRows)
	}
	if trnRows[0].Status != ValidationWarning || !strings.Contains(trnRows[0].Message, "1 empty value(s)") {
		t.Fatalf("TRN first row = %+v", trnRows[0])
	}
	if trnRows[1].Status != ValidationError || !strings.Contains(trnRows[1].Message, trn.Format) {
		t.Fatalf("TRN second row = %+v", trnRows[1])
	}

	// Type code column: enum violation.
	docRows := byColumn["DocType"]
	if len(docRows) != 1 || docRows[0].Status != ValidationError || !strings.Contains(docRows[0].Message, "outside allowed values") {
		t.Fatalf("DocType rows = %+v", docRows)
	}

	// Numeric column: thousands separators pass, letters fail.
	netRows := byColumn["Net"]
	if len(netRows) != 1 || netRows[0].Status != ValidationError || !strings.Contains(netRows[0].Message, "1 non-numeric") {
		t.Fatalf("Net rows = %+v", netRows)
	}

	// Date column: heuristic warning only.
	dateRows := byColumn["Date"]
	if len(dateRows) != 1 || dateRows[0].Status != ValidationWarning {
		t.Fatalf("Date rows = %+v", dateRows)
	}

	// Clean optional column: exactly one pass.
	cityRows := byColumn["City"]
	if len(cityRows) != 1 || cityRows[0].Status != ValidationPass {
		t.Fatalf("City rows = %+v", cityRows)
	}
}

func TestValidateMappedDataStrictMandatoryEnforcement(t *testing.T) {
	trn := fieldById(t, "seller_trn")
	m := FieldMapping{
		ErpColumn:    "TRN",
		TargetField:  trn,
		SampleValues: []string{"100000000000001", ""},
	}

	results := ValidateMappedData([]FieldMapping{m})
	if len(results) != 1 || results[0].Status != ValidationWarning {
		t.Fatalf("default mode should warn, got %+v", results)
	}

	t.Setenv("STRICT_MANDATORY_ENFORCEMENT", "true")
	results = ValidateMappedData([]FieldMapping{m})
	if len(results) != 1 || results[0].Status != ValidationError {
		t.Fatalf("strict mode should error, got %+v", results)
	}
}

func TestValidateMappedDataAppliesTransformsFirst(t *testing.T) {
	currency := fieldById(t, "invoice_currency_code")
	m := FieldMapping{
		ErpColumn:    "Curr",
		TargetField:  currency,
		SampleValues: []string{" aed ", "aed"},
		Transformations: []transform.Transformation{
			{Type: transform.TransformTrim},
			{Type: transform.TransformUppercase},
		},
	}
	results := ValidateMappedData([]FieldMapping{m})
	if len(results) != 1 || results[0].Status != ValidationPass {
		t.Fatalf("transformed samples should pass, got %+v", results)
	}

	m.Transformations = nil
	results = ValidateMappedData([]FieldMapping{m})
	if len(results) != 1 || results[0].Status != ValidationError {
		t.Fatalf("raw lowercase samples should fail the format, got %+v", results)
	}
}

func TestSummarizeMappings(t *testing.T) {
	stats := SummarizeMappings([]FieldMapping{
		{ErpColumn: "A", TargetField: fieldById(t, "invoice_number"), SampleValues: []string{"1"}},
		{ErpColumn: "B", TargetField: fieldById(t, "invoice_number"), Transformations: []transform.Transformation{{Type: transform.TransformTrim}}},
		{ErpColumn: "C", TargetField: fieldById(t, "buyer_name")},
	})
	if stats.TotalMappings != 3 || stats.DistinctTargets != 2 || stats.WithTransformations != 1 || stats.WithSampleData != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
