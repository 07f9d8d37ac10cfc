package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses monetary amounts as they arrive in ERP extracts.
// Accept common user-formatted strings like:
// - "20,000"
// - "AED 20,000"
// - "AED -20,000"
// - "Dhs 20000"
//
// Keep digits, '.', and a leading '-' only.
func ParseDecimal(v string) (decimal.Decimal, error) {
	s := strings.TrimSpace(v)
	if s != "" {
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, "AED", "")
		s = strings.ReplaceAll(s, "aed", "")
		s = strings.ReplaceAll(s, "Dhs", "")
		s = strings.ReplaceAll(s, "dhs", "")
		s = strings.TrimSpace(s)
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	// Strip everything except digits and '.'.
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.NewFromInt(0), fmt.Errorf("invalid value")
	}
	if neg {
		clean = "-" + clean
	}

	val, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.NewFromInt(0), err
	}
	return val, nil
}
