package checks

import (
	"sort"

	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/models"
)

// Check groups the rules evaluated under one check id. The runner reports
// one CheckResult per Check.
type Check struct {
	Id    string
	Name  string
	Rules []Rule
}

// Run evaluates the check's rules in order against the context.
func (c Check) Run(dc *models.DataContext, direction models.Direction) models.CheckResult {
	result := models.CheckResult{CheckId: c.Id, Exceptions: []models.Exception{}}
	for _, r := range c.Rules {
		result.Exceptions = append(result.Exceptions, r.Evaluate(dc, direction)...)
	}
	return result
}

// BuiltinChecks returns the fixed structural, integrity, reconciliation and
// code-list checks. The slice order is the report order.
func BuiltinChecks() []Check {
	cf := config.Conformance()

	return []Check{
		{
			Id:   "mandatory_header_fields",
			Name: "Mandatory header fields",
			Rules: []Rule{
				{
					Id: "mandatory_header_fields", Severity: models.SeverityCritical,
					Scope: ScopeHeader, Predicate: PredicatePresence,
					Fields: []string{
						"invoice_number", "invoice_date", "currency",
						"seller_name", "seller_trn", "seller_electronic_address",
						"invoice_type_code", "payment_means_code", "tax_category_code",
						"buyer_id",
					},
				},
				{
					Id: "mandatory_header_fields", Severity: models.SeverityCritical,
					Scope: ScopeHeader, Predicate: PredicatePresence,
					Field: "supplier_id", Direction: models.DirectionAP,
				},
			},
		},
		{
			Id:   "mandatory_line_fields",
			Name: "Mandatory line fields",
			Rules: []Rule{
				{
					Id: "mandatory_line_fields", Severity: models.SeverityHigh,
					Scope: ScopeLine, Predicate: PredicatePresence,
					Fields: []string{"line_id", "invoice_id", "item_name"},
				},
				{
					Id: "mandatory_line_fields", Severity: models.SeverityHigh,
					Scope: ScopeHeader, Predicate: PredicateCrossReference,
					Field: "invoice_id", Target: "lines",
					Message: "invoice has no line items",
				},
			},
		},
		{
			Id:   "line_header_integrity",
			Name: "Lines resolve to invoices",
			Rules: []Rule{
				{
					Id: "line_header_integrity", Severity: models.SeverityHigh,
					Scope: ScopeLine, Predicate: PredicateCrossReference,
					Field: "invoice_id", Target: "headers",
				},
			},
		},
		{
			Id:   "buyer_reference_integrity",
			Name: "Invoices resolve to buyers",
			Rules: []Rule{
				{
					Id: "buyer_reference_integrity", Severity: models.SeverityHigh,
					Scope: ScopeHeader, Predicate: PredicateCrossReference,
					Field: "buyer_id", Target: "buyers",
				},
			},
		},
		{
			Id:   "header_total_reconciliation",
			Name: "Header totals reconcile",
			Rules: []Rule{
				{
					Id: "header_total_reconciliation", Severity: models.SeverityCritical,
					Scope: ScopeHeader, Predicate: PredicateNumericTolerance,
					Left: "sum_of_line_nets", Right: "total_excl_vat", Field: "total_excl_vat",
				},
				{
					Id: "header_total_reconciliation", Severity: models.SeverityCritical,
					Scope: ScopeHeader, Predicate: PredicateNumericTolerance,
					Left: "computed_total", Right: "total_incl_vat", Field: "total_incl_vat",
				},
			},
		},
		{
			Id:   "vat_amount_reconciliation",
			Name: "VAT recomputes from base and rate",
			Rules: []Rule{
				{
					Id: "vat_amount_reconciliation", Severity: models.SeverityCritical,
					Scope: ScopeHeader, Predicate: PredicateNumericTolerance,
					Left: "computed_vat", Right: "vat_total", Field: "vat_total",
				},
			},
		},
		{
			Id:   "line_amount_reconciliation",
			Name: "Line nets recompute from quantity and price",
			Rules: []Rule{
				{
					Id: "line_amount_reconciliation", Severity: models.SeverityHigh,
					Scope: ScopeLine, Predicate: PredicateNumericTolerance,
					Left: "computed_line_net", Right: "line_net", Field: "line_net",
				},
			},
		},
		{
			Id:   "currency_allowed",
			Name: "Currency in supported list",
			Rules: []Rule{
				{
					Id: "currency_allowed", Severity: models.SeverityMedium,
					Scope: ScopeHeader, Predicate: PredicateEnum,
					Field: "currency", Allowed: sortedKeys(cf.Currencies),
				},
			},
		},
		{
			Id:   "vat_rate_allowed",
			Name: "VAT rate in jurisdiction list",
			Rules: []Rule{
				{
					Id: "vat_rate_allowed", Severity: models.SeverityHigh,
					Scope: ScopeHeader, Predicate: PredicateEnum,
					Field: "tax_category_rate", Allowed: vatRateStrings(cf),
				},
			},
		},
		{
			Id:   "invoice_type_code_allowed",
			Name: "Invoice type code in UC1 list",
			Rules: []Rule{
				{
					Id: "invoice_type_code_allowed", Severity: models.SeverityMedium,
					Scope: ScopeHeader, Predicate: PredicateEnum,
					Field: "invoice_type_code", Allowed: sortedKeys(cf.InvoiceTypeCodes),
				},
			},
		},
		{
			Id:   "payment_means_allowed",
			Name: "Payment means code in UNCL4461 subset",
			Rules: []Rule{
				{
					Id: "payment_means_allowed", Severity: models.SeverityMedium,
					Scope: ScopeHeader, Predicate: PredicateEnum,
					Field: "payment_means_code", Allowed: sortedKeys(cf.PaymentMeans),
				},
			},
		},
		{
			Id:   "subdivision_allowed",
			Name: "Emirate codes in ISO 3166-2:AE",
			Rules: []Rule{
				{
					Id: "subdivision_allowed", Severity: models.SeverityLow,
					Scope: ScopeHeader, Predicate: PredicateEnum,
					Field: "seller_subdivision", Allowed: sortedKeys(cf.Subdivisions),
				},
				{
					Id: "subdivision_allowed", Severity: models.SeverityLow,
					Scope: ScopeBuyer, Predicate: PredicateEnum,
					Field: "subdivision", Allowed: sortedKeys(cf.Subdivisions),
				},
			},
		},
		{
			Id:   "trn_format",
			Name: "TRNs are 15 digits",
			Rules: []Rule{
				{
					Id: "trn_format", Severity: models.SeverityCritical,
					Scope: ScopeHeader, Predicate: PredicatePattern,
					Field: "seller_trn", Pattern: cf.TRNPattern.String(),
				},
				{
					Id: "trn_format", Severity: models.SeverityCritical,
					Scope: ScopeBuyer, Predicate: PredicatePattern,
					Field: "buyer_trn", Pattern: cf.TRNPattern.String(),
				},
			},
		},
		{
			Id:   "country_format",
			Name: "Country codes are ISO alpha-2",
			Rules: []Rule{
				{
					Id: "country_format", Severity: models.SeverityMedium,
					Scope: ScopeHeader, Predicate: PredicatePattern,
					Field: "seller_country", Pattern: cf.CountryPattern.String(),
				},
				{
					Id: "country_format", Severity: models.SeverityMedium,
					Scope: ScopeBuyer, Predicate: PredicatePattern,
					Field: "country", Pattern: cf.CountryPattern.String(),
				},
			},
		},
		{
			Id:   "currency_format",
			Name: "Currency codes are ISO alpha-3",
			Rules: []Rule{
				{
					Id: "currency_format", Severity: models.SeverityMedium,
					Scope: ScopeHeader, Predicate: PredicatePattern,
					Field: "currency", Pattern: cf.CurrencyPattern.String(),
				},
			},
		},
		{
			Id:   "date_format",
			Name: "Dates in conformant representation",
			Rules: []Rule{
				{
					Id: "date_format", Severity: models.SeverityHigh,
					Scope: ScopeHeader, Predicate: PredicatePattern,
					Field: "invoice_date", Pattern: cf.DatePattern.String(),
				},
				{
					Id: "date_format", Severity: models.SeverityHigh,
					Scope: ScopeHeader, Predicate: PredicatePattern,
					Field: "due_date", Pattern: cf.DatePattern.String(),
				},
			},
		},
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func vatRateStrings(cf *config.ConformanceConfig) []string {
	out := make([]string, 0, len(cf.VATRates))
	for _, r := range cf.VATRates {
		out = append(out, r.String())
	}
	return out
}
