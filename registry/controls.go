package registry

import (
	"sort"
	"sync"
)

type ControlType string

const (
	ControlTypePreventive ControlType = "preventive"
	ControlTypeDetective  ControlType = "detective"
)

// Control is an audit-facing grouping of rules. CoveredDRIds is derived from
// the traceability table when the registry is built, never authored by hand.
type Control struct {
	Id           string      `json:"id"`
	Name         string      `json:"name"`
	ControlType  ControlType `json:"control_type"`
	Description  string      `json:"description"`
	CoveredRules []string    `json:"covered_rules"`
	CoveredDRIds []string    `json:"covered_dr_ids"`
}

var controlDefinitions = []Control{
	{
		Id:          "CTL-001",
		Name:        "Mandatory data capture",
		ControlType: ControlTypePreventive,
		Description: "All header and line fields required for a UC1 tax invoice are captured at source.",
		CoveredRules: []string{
			"mandatory_header_fields", "mandatory_line_fields",
			"UAE-UC1-CHK-001", "UAE-UC1-CHK-005", "UAE-UC1-CHK-010",
		},
	},
	{
		Id:          "CTL-002",
		Name:        "Tax registration validity",
		ControlType: ControlTypePreventive,
		Description: "Seller and buyer TRNs are well formed and the issuing side belongs to the organization.",
		CoveredRules: []string{
			"trn_format", "organization_profile_trn",
			"UAE-UC1-CHK-006", "UAE-UC1-CHK-011",
		},
	},
	{
		Id:          "CTL-003",
		Name:        "VAT computation accuracy",
		ControlType: ControlTypeDetective,
		Description: "VAT amounts recompute from taxable base and rate within monetary tolerance.",
		CoveredRules: []string{
			"vat_amount_reconciliation", "vat_rate_allowed",
			"UAE-UC1-CHK-016", "UAE-UC1-CHK-018",
		},
	},
	{
		Id:          "CTL-004",
		Name:        "Invoice total reconciliation",
		ControlType: ControlTypeDetective,
		Description: "Document totals agree with line-level amounts and the amount due.",
		CoveredRules: []string{
			"header_total_reconciliation", "line_amount_reconciliation",
			"UAE-UC1-CHK-017",
		},
	},
	{
		Id:          "CTL-005",
		Name:        "Reference data conformance",
		ControlType: ControlTypePreventive,
		Description: "Coded values come from the UC1 code lists for currency, type, payment means and VAT category.",
		CoveredRules: []string{
			"currency_allowed", "currency_format", "invoice_type_code_allowed", "payment_means_allowed", "subdivision_allowed",
			"UAE-UC1-CHK-003", "UAE-UC1-CHK-004", "UAE-UC1-CHK-015", "UAE-UC1-CHK-019",
		},
	},
	{
		Id:          "CTL-006",
		Name:        "Counterparty master integrity",
		ControlType: ControlTypeDetective,
		Description: "Every invoice resolves to a known counterparty and every line to a known invoice.",
		CoveredRules: []string{
			"buyer_reference_integrity", "line_header_integrity",
			"UAE-UC1-CHK-020",
		},
	},
	{
		Id:          "CTL-007",
		Name:        "Address and jurisdiction data",
		ControlType: ControlTypePreventive,
		Description: "Country and emirate codes on both parties follow ISO and UAE subdivision lists.",
		CoveredRules: []string{
			"country_format",
			"UAE-UC1-CHK-008", "UAE-UC1-CHK-009", "UAE-UC1-CHK-013", "UAE-UC1-CHK-014",
		},
	},
	{
		Id:          "CTL-008",
		Name:        "Document dating discipline",
		ControlType: ControlTypeDetective,
		Description: "Issue and due dates are present in the conformant date format.",
		CoveredRules: []string{
			"date_format",
			"UAE-UC1-CHK-002",
		},
	},
}

// ControlsRegistry is the derived view over the static control definitions.
// Built once, safe for concurrent readers afterwards.
type ControlsRegistry struct {
	Controls []Control

	byDR   map[string][]*Control
	byRule map[string][]*Control
}

var (
	controlsRegistry *ControlsRegistry
	controlsOnce     sync.Once
)

// GetControlsRegistry returns the memoized registry, deriving covered DR sets
// from the traceability table on first call.
func GetControlsRegistry() *ControlsRegistry {
	controlsOnce.Do(func() {
		controlsRegistry = buildControlsRegistry()
	})
	return controlsRegistry
}

func buildControlsRegistry() *ControlsRegistry {
	reg := &ControlsRegistry{
		Controls: make([]Control, len(controlDefinitions)),
		byDR:     make(map[string][]*Control),
		byRule:   make(map[string][]*Control),
	}
	copy(reg.Controls, controlDefinitions)

	for i := range reg.Controls {
		ctl := &reg.Controls[i]
		drSet := make(map[string]bool)
		for _, ruleId := range ctl.CoveredRules {
			reg.byRule[ruleId] = append(reg.byRule[ruleId], ctl)
			for _, drId := range AffectedDRs(ruleId) {
				drSet[drId] = true
			}
		}
		ctl.CoveredDRIds = make([]string, 0, len(drSet))
		for drId := range drSet {
			ctl.CoveredDRIds = append(ctl.CoveredDRIds, drId)
		}
		sort.Strings(ctl.CoveredDRIds)
		for _, drId := range ctl.CoveredDRIds {
			reg.byDR[drId] = append(reg.byDR[drId], ctl)
		}
	}
	return reg
}

// ControlsForDR lists the controls whose rules affect the given DR id.
func (r *ControlsRegistry) ControlsForDR(drId string) []*Control {
	return r.byDR[drId]
}

// ControlsForRule lists the controls covering the given rule id.
func (r *ControlsRegistry) ControlsForRule(ruleId string) []*Control {
	return r.byRule[ruleId]
}

// CoveredDRIds returns the sorted set of DR ids covered by at least one
// control.
func (r *ControlsRegistry) CoveredDRIds() []string {
	ids := make([]string, 0, len(r.byDR))
	for drId := range r.byDR {
		ids = append(ids, drId)
	}
	sort.Strings(ids)
	return ids
}
