package checks

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/veritaxlabs/pintae_backend/models"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return v
}

// cleanDataset is arithmetically and structurally conformant in both
// directions: running every check over it must produce zero exceptions.
func cleanDataset(t *testing.T) *models.DataContext {
	t.Helper()
	buyers := []models.Buyer{{
		BuyerId:           "B-001",
		BuyerName:         "Al Noor Trading LLC",
		BuyerTRN:          "100000000000002",
		AddressLine1:      "Sheikh Zayed Road 100",
		Country:           "AE",
		City:              "Dubai",
		Subdivision:       "AE-DU",
		ElectronicAddress: "0235:100000000000002",
	}}
	headers := []models.InvoiceHeader{{
		InvoiceId:               "inv-001",
		InvoiceNumber:           "INV-2026-0001",
		SupplierId:              "SUP-001",
		SellerName:              "Veritax Demo FZE",
		SellerTRN:               "100000000000001",
		SellerElectronicAddress: "0235:100000000000001",
		SellerCountry:           "AE",
		SellerCity:              "Dubai",
		SellerSubdivision:       "AE-DU",
		BuyerId:                 "B-001",
		Currency:                "AED",
		InvoiceDate:             "2026-03-05",
		DueDate:                 "2026-04-04",
		TotalExclVAT:            d(t, "240.00"),
		VATTotal:                d(t, "12.00"),
		TotalInclVAT:            d(t, "252.00"),
		AmountDue:               d(t, "252.00"),
		TaxCategoryCode:         "S",
		TaxCategoryRate:         d(t, "5"),
		InvoiceTypeCode:         "380",
		PaymentMeansCode:        "30",
		PaymentTerms:            "Net 30",
	}}
	lines := []models.InvoiceLine{
		{
			LineId: "L-001", InvoiceId: "inv-001", LineNumber: 1,
			ItemName: "Consulting hours", Quantity: d(t, "2"), UnitPrice: d(t, "100.00"),
			Discount: d(t, "0"), LineNet: d(t, "200.00"), LineVAT: d(t, "10.00"),
			TaxCategoryCode: "S",
		},
		{
			LineId: "L-002", InvoiceId: "inv-001", LineNumber: 2,
			ItemName: "Support retainer", Quantity: d(t, "1"), UnitPrice: d(t, "50.00"),
			Discount: d(t, "10.00"), LineNet: d(t, "40.00"), LineVAT: d(t, "2.00"),
			TaxCategoryCode: "S",
		},
	}
	return models.NewDataContext(buyers, headers, lines)
}

func runSerial(t *testing.T, dc *models.DataContext, opts RunOptions) []models.CheckResult {
	t.Helper()
	results, err := RunChecks(dc, opts)
	if err != nil {
		t.Fatalf("RunChecks failed: %v", err)
	}
	return results
}

func resultFor(t *testing.T, results []models.CheckResult, checkId string) models.CheckResult {
	t.Helper()
	for _, r := range results {
		if r.CheckId == checkId {
			return r
		}
	}
	t.Fatalf("no result for check %q", checkId)
	return models.CheckResult{}
}

func TestCleanDatasetYieldsZeroExceptions(t *testing.T) {
	for _, direction := range []models.Direction{models.DirectionAR, models.DirectionAP} {
		results := runSerial(t, cleanDataset(t), RunOptions{Direction: direction})
		flat := models.FlattenExceptions(results)
		if len(flat) != 0 {
			t.Fatalf("direction %s: expected clean run, got %d exceptions, first: %+v",
				direction, len(flat), flat[0])
		}
	}
}

func TestSupplierIdMandatoryOnAPOnly(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].SupplierId = ""
	dc = models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)

	arResult := resultFor(t, runSerial(t, dc, RunOptions{Direction: models.DirectionAR}), "mandatory_header_fields")
	if len(arResult.Exceptions) != 0 {
		t.Fatalf("AR should not require supplier_id, got %+v", arResult.Exceptions)
	}

	apResult := resultFor(t, runSerial(t, dc, RunOptions{Direction: models.DirectionAP}), "mandatory_header_fields")
	if len(apResult.Exceptions) != 1 {
		t.Fatalf("AP run exceptions = %+v", apResult.Exceptions)
	}
	if got := apResult.Exceptions[0].Field; got != "supplier_id" {
		t.Fatalf("AP missing field = %q, want supplier_id", got)
	}
}

func TestGetRulesetForDirectionIdentity(t *testing.T) {
	if got := GetRulesetForDirection(models.DirectionAR); got != models.DirectionAR {
		t.Fatalf("AR routed to %q", got)
	}
	if got := GetRulesetForDirection(models.DirectionAP); got != models.DirectionAP {
		t.Fatalf("AP routed to %q", got)
	}
}

func TestOrganizationProfileExceptionsByDirection(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].SellerTRN = "999999999999999"
	dc.Buyers[0].BuyerTRN = "999999999999998"
	profile := &models.OrganizationProfile{OurEntityTRNs: []string{"100000000000001"}}

	ar := BuildOrganizationProfileExceptions(profile, models.DirectionAR, dc)
	if len(ar) != 1 {
		t.Fatalf("AR exceptions = %+v", ar)
	}
	if ar[0].Field != "seller_trn" || ar[0].Direction != models.DirectionAR {
		t.Fatalf("AR exception = %+v", ar[0])
	}

	ap := BuildOrganizationProfileExceptions(profile, models.DirectionAP, dc)
	if len(ap) != 1 {
		t.Fatalf("AP exceptions = %+v", ap)
	}
	if ap[0].Field != "buyer_trn" || ap[0].Direction != models.DirectionAP {
		t.Fatalf("AP exception = %+v", ap[0])
	}

	// Multiple configured TRNs still yield exactly one exception per header.
	wide := &models.OrganizationProfile{OurEntityTRNs: []string{"1", "2", "3", "4"}}
	if got := BuildOrganizationProfileExceptions(wide, models.DirectionAR, dc); len(got) != 1 {
		t.Fatalf("wide profile exceptions = %d, want 1", len(got))
	}

	// A matching TRN passes.
	match := &models.OrganizationProfile{OurEntityTRNs: []string{" 999999999999999 "}}
	if got := BuildOrganizationProfileExceptions(match, models.DirectionAR, dc); len(got) != 0 {
		t.Fatalf("matching profile should pass, got %+v", got)
	}
}

func TestZeroLineHeaderSingleException(t *testing.T) {
	dc := cleanDataset(t)
	headers := append([]models.InvoiceHeader{}, dc.Headers...)
	headers = append(headers, dc.Headers[0])
	headers[1].InvoiceId = "inv-002"
	headers[1].InvoiceNumber = "INV-2026-0002"
	dc = models.NewDataContext(dc.Buyers, headers, dc.Lines)

	results := runSerial(t, dc, RunOptions{Direction: models.DirectionAR})
	flat := models.FlattenExceptions(results)
	if len(flat) != 1 {
		t.Fatalf("expected the single no-line-items exception, got %+v", flat)
	}
	ex := flat[0]
	if ex.RuleId != "mandatory_line_fields" || ex.InvoiceId != "inv-002" {
		t.Fatalf("exception = %+v", ex)
	}
	if !strings.Contains(ex.Message, "no line items") {
		t.Fatalf("message = %q", ex.Message)
	}
}

func TestReconciliationTolerance(t *testing.T) {
	// Drift of exactly 0.01 is still within tolerance.
	dc := cleanDataset(t)
	dc.Headers[0].TotalExclVAT = d(t, "240.01")
	dc.Headers[0].TotalInclVAT = d(t, "252.01")
	dc.Headers[0].AmountDue = d(t, "252.01")
	// VAT recomputes from 240.01 * 5% = 12.0005, within 0.01 of 12.00.
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	flat := models.FlattenExceptions(runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR}))
	if len(flat) != 0 {
		t.Fatalf("0.01 drift should pass, got %+v", flat)
	}

	// Drift beyond tolerance fires header_total_reconciliation.
	dc = cleanDataset(t)
	dc.Headers[0].TotalExclVAT = d(t, "240.02")
	rebuilt = models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	recon := resultFor(t, results, "header_total_reconciliation")
	if len(recon.Exceptions) == 0 {
		t.Fatalf("0.02 drift should fail reconciliation")
	}
	if recon.Exceptions[0].InvoiceId != "inv-001" {
		t.Fatalf("exception = %+v", recon.Exceptions[0])
	}
}

func TestVATReconciliation(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].VATTotal = d(t, "13.00")
	dc.Headers[0].TotalInclVAT = d(t, "253.00")
	dc.Headers[0].AmountDue = d(t, "253.00")
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)

	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	vat := resultFor(t, results, "vat_amount_reconciliation")
	if len(vat.Exceptions) != 1 {
		t.Fatalf("vat exceptions = %+v", vat.Exceptions)
	}
	if vat.Exceptions[0].Field != "vat_total" || vat.Exceptions[0].Severity != models.SeverityCritical {
		t.Fatalf("vat exception = %+v", vat.Exceptions[0])
	}
}

func TestLineAmountReconciliationRowOrder(t *testing.T) {
	dc := cleanDataset(t)
	lines := append([]models.InvoiceLine{}, dc.Lines...)
	lines[0].LineNet = d(t, "150.00")
	lines[1].LineNet = d(t, "35.00")
	// Keep header sums consistent with the broken lines so only the line
	// check fires: 150 + 35 = 185, VAT 9.25, total 194.25.
	headers := append([]models.InvoiceHeader{}, dc.Headers...)
	headers[0].TotalExclVAT = d(t, "185.00")
	headers[0].VATTotal = d(t, "9.25")
	headers[0].TotalInclVAT = d(t, "194.25")
	headers[0].AmountDue = d(t, "194.25")
	rebuilt := models.NewDataContext(dc.Buyers, headers, lines)

	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	lineRecon := resultFor(t, results, "line_amount_reconciliation")
	if len(lineRecon.Exceptions) != 2 {
		t.Fatalf("line exceptions = %+v", lineRecon.Exceptions)
	}
	// Row order follows source line order.
	first, second := lineRecon.Exceptions[0], lineRecon.Exceptions[1]
	if !strings.Contains(first.Message, "200.00") || !strings.Contains(second.Message, "40.00") {
		t.Fatalf("exceptions out of row order: %q then %q", first.Message, second.Message)
	}
}

func TestEnumChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *models.InvoiceHeader)
		checkId string
	}{
		{"bad currency", func(h *models.InvoiceHeader) { h.Currency = "XXX" }, "currency_allowed"},
		{"bad type code", func(h *models.InvoiceHeader) { h.InvoiceTypeCode = "999" }, "invoice_type_code_allowed"},
		{"bad payment means", func(h *models.InvoiceHeader) { h.PaymentMeansCode = "99" }, "payment_means_allowed"},
		{"bad emirate", func(h *models.InvoiceHeader) { h.SellerSubdivision = "AE-XX" }, "subdivision_allowed"},
	}
	for _, tc := range tests {
		dc := cleanDataset(t)
		tc.mutate(&dc.Headers[0])
		rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
		results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
		if got := resultFor(t, results, tc.checkId); len(got.Exceptions) != 1 {
			t.Errorf("%s: exceptions = %+v", tc.name, got.Exceptions)
		}
	}
}

func TestVATRateEnum(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].TaxCategoryRate = d(t, "7")
	dc.Headers[0].VATTotal = d(t, "16.80")
	dc.Headers[0].TotalInclVAT = d(t, "256.80")
	dc.Headers[0].AmountDue = d(t, "256.80")
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)

	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	if got := resultFor(t, results, "vat_rate_allowed"); len(got.Exceptions) != 1 {
		t.Fatalf("vat_rate_allowed exceptions = %+v", got.Exceptions)
	}
	// The pack restates the rate list under its own rule id.
	if got := resultFor(t, results, "UAE-UC1-CHK-018"); len(got.Exceptions) != 1 {
		t.Fatalf("pack rate rule exceptions = %+v", got.Exceptions)
	}
}

func TestPatternChecksSkipEmptyValues(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].DueDate = ""
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	if got := resultFor(t, results, "date_format"); len(got.Exceptions) != 0 {
		t.Fatalf("empty due date should be skipped, got %+v", got.Exceptions)
	}

	dc = cleanDataset(t)
	dc.Headers[0].DueDate = "04/04/2026"
	rebuilt = models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	results = runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	got := resultFor(t, results, "date_format")
	if len(got.Exceptions) != 1 || got.Exceptions[0].Field != "due_date" {
		t.Fatalf("date_format exceptions = %+v", got.Exceptions)
	}
}

func TestTRNPattern(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].SellerTRN = "12345"
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	got := resultFor(t, results, "trn_format")
	if len(got.Exceptions) != 1 || got.Exceptions[0].Severity != models.SeverityCritical {
		t.Fatalf("trn_format exceptions = %+v", got.Exceptions)
	}
}

func TestCurrencyPattern(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].Currency = "aed"
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	got := resultFor(t, results, "currency_format")
	if len(got.Exceptions) != 1 || got.Exceptions[0].Field != "currency" {
		t.Fatalf("currency_format exceptions = %+v", got.Exceptions)
	}
}

func TestDanglingReferences(t *testing.T) {
	// A line pointing at an unknown invoice.
	dc := cleanDataset(t)
	lines := append([]models.InvoiceLine{}, dc.Lines...)
	lines = append(lines, models.InvoiceLine{
		LineId: "L-999", InvoiceId: "ghost", LineNumber: 1,
		ItemName: "Orphan", Quantity: d(t, "1"), UnitPrice: d(t, "10"),
		LineNet: d(t, "10"), TaxCategoryCode: "S",
	})
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, lines)
	results := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	got := resultFor(t, results, "line_header_integrity")
	if len(got.Exceptions) != 1 || got.Exceptions[0].InvoiceId != "ghost" {
		t.Fatalf("line integrity exceptions = %+v", got.Exceptions)
	}

	// A header pointing at an unknown buyer: built-in and pack rule both fire.
	dc = cleanDataset(t)
	dc.Headers[0].BuyerId = "ghost-buyer"
	rebuilt = models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	results = runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	if got := resultFor(t, results, "buyer_reference_integrity"); len(got.Exceptions) != 1 {
		t.Fatalf("buyer integrity exceptions = %+v", got.Exceptions)
	}
	if got := resultFor(t, results, "UAE-UC1-CHK-020"); len(got.Exceptions) != 1 {
		t.Fatalf("pack buyer rule exceptions = %+v", got.Exceptions)
	}

	// Empty buyer_id is a presence problem, not an integrity one.
	dc = cleanDataset(t)
	dc.Headers[0].BuyerId = ""
	rebuilt = models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	results = runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR})
	if got := resultFor(t, results, "buyer_reference_integrity"); len(got.Exceptions) != 0 {
		t.Fatalf("empty buyer_id should not hit integrity, got %+v", got.Exceptions)
	}
	mandatory := resultFor(t, results, "mandatory_header_fields")
	found := false
	for _, ex := range mandatory.Exceptions {
		if ex.Field == "buyer_id" {
			found = true
		}
	}
	if !found {
		t.Fatalf("empty buyer_id should be a mandatory-field exception, got %+v", mandatory.Exceptions)
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].Currency = "XXX"
	dc.Headers[0].SellerTRN = "bad"
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)
	profile := &models.OrganizationProfile{OurEntityTRNs: []string{"100000000000001"}}

	serial := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR, Profile: profile})
	parallel := runSerial(t, rebuilt, RunOptions{Direction: models.DirectionAR, Profile: profile, Parallel: true})

	if len(serial) != len(parallel) {
		t.Fatalf("result lengths differ: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i].CheckId != parallel[i].CheckId {
			t.Fatalf("order differs at %d: %s vs %s", i, serial[i].CheckId, parallel[i].CheckId)
		}
		if len(serial[i].Exceptions) != len(parallel[i].Exceptions) {
			t.Fatalf("check %s exception counts differ", serial[i].CheckId)
		}
		for j := range serial[i].Exceptions {
			if serial[i].Exceptions[j] != parallel[i].Exceptions[j] {
				t.Fatalf("check %s exception %d differs", serial[i].CheckId, j)
			}
		}
	}
}

func TestRunChecksDefaultsDirection(t *testing.T) {
	dc := cleanDataset(t)
	dc.Headers[0].SupplierId = ""
	rebuilt := models.NewDataContext(dc.Buyers, dc.Headers, dc.Lines)

	// Default direction is AR, so a blank supplier_id stays clean.
	results := runSerial(t, rebuilt, RunOptions{})
	if flat := models.FlattenExceptions(results); len(flat) != 0 {
		t.Fatalf("default direction run should be clean, got %+v", flat)
	}

	if _, err := RunChecks(rebuilt, RunOptions{Direction: models.Direction("SIDEWAYS")}); err == nil {
		t.Fatalf("invalid direction should error")
	}
}

func TestDataContextIsolationBetweenDirections(t *testing.T) {
	ar := cleanDataset(t)

	apHeaders := append([]models.InvoiceHeader{}, ar.Headers...)
	apHeaders[0].InvoiceId = "bill-001"
	apHeaders[0].SupplierId = "SUP-777"
	apLines := append([]models.InvoiceLine{}, ar.Lines...)
	for i := range apLines {
		apLines[i].InvoiceId = "bill-001"
	}
	ap := models.NewDataContext(ar.Buyers, apHeaders, apLines)

	if len(ar.Headers) != 1 || len(ap.Headers) != 1 {
		t.Fatalf("contexts should each hold one header")
	}
	if _, ok := ar.HeaderById("bill-001"); ok {
		t.Fatalf("AP key leaked into AR context")
	}
	if _, ok := ap.HeaderById("inv-001"); ok {
		t.Fatalf("AR key leaked into AP context")
	}

	// Switching evaluation back and forth never mutates either context.
	runSerial(t, ap, RunOptions{Direction: models.DirectionAP})
	runSerial(t, ar, RunOptions{Direction: models.DirectionAR})
	runSerial(t, ap, RunOptions{Direction: models.DirectionAP})
	if len(ar.Lines) != 2 || len(ap.Lines) != 2 {
		t.Fatalf("row counts drifted between runs")
	}
}
