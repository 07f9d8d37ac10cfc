package config

import (
	"regexp"
	"sync"

	"github.com/shopspring/decimal"
)

// ConformanceConfig is the central place for the jurisdiction-level patterns
// and code lists every check evaluates against. It is built once and never
// mutated afterwards; concurrent readers are safe.
type ConformanceConfig struct {
	// UAE TRN: 15 digits, no separators.
	TRNPattern *regexp.Regexp
	// ISO 3166-1 alpha-2.
	CountryPattern *regexp.Regexp
	// Conformant date representation, YYYY-MM-DD.
	DatePattern *regexp.Regexp
	// ISO 4217 alpha-3.
	CurrencyPattern *regexp.Regexp

	// Code lists. Keys are the exact conformant representations.
	Currencies       map[string]bool
	InvoiceTypeCodes map[string]bool
	PaymentMeans     map[string]bool
	// ISO 3166-2:AE Emirate codes.
	Subdivisions map[string]bool

	// Allowed VAT rates (percent). UAE: zero-rated and 5% standard.
	VATRates []decimal.Decimal

	// MonetaryTolerance absorbs rounding drift on reconciliations.
	// Comparisons are |a-b| <= tolerance, never strict equality.
	MonetaryTolerance decimal.Decimal
}

var (
	conformance     *ConformanceConfig
	conformanceOnce sync.Once
)

// Conformance returns the process-wide conformance configuration.
func Conformance() *ConformanceConfig {
	conformanceOnce.Do(func() {
		conformance = &ConformanceConfig{
			TRNPattern:      regexp.MustCompile(`^[0-9]{15}$`),
			CountryPattern:  regexp.MustCompile(`^[A-Z]{2}$`),
			DatePattern:     regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
			CurrencyPattern: regexp.MustCompile(`^[A-Z]{3}$`),
			Currencies: toSet(
				"AED", "USD", "EUR", "GBP", "SAR", "QAR", "KWD", "BHD", "OMR", "INR", "CNY", "JPY",
			),
			// UNTDID 1001 subset admitted by the UC1 tax invoice profile.
			InvoiceTypeCodes: toSet("380", "381", "383", "384", "389"),
			// UNCL4461 subset.
			PaymentMeans: toSet("10", "20", "30", "42", "48", "58", "97"),
			Subdivisions: toSet("AE-AZ", "AE-AJ", "AE-DU", "AE-FU", "AE-RK", "AE-SH", "AE-UQ"),
			VATRates: []decimal.Decimal{
				decimal.NewFromInt(0),
				decimal.NewFromInt(5),
			},
			MonetaryTolerance: decimal.NewFromFloat(0.01),
		}
	})
	return conformance
}

func toSet(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// IsAllowedVATRate reports whether rate is one of the jurisdiction rates.
func (c *ConformanceConfig) IsAllowedVATRate(rate decimal.Decimal) bool {
	for _, r := range c.VATRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// WithinTolerance reports |a-b| <= MonetaryTolerance.
func (c *ConformanceConfig) WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(c.MonetaryTolerance)
}
