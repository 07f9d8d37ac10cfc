package registry

import "sync"

// RuleTrace links one rule id to the data requirements its exceptions affect.
// DR ids are IBT references from the UC1 field table.
type RuleTrace struct {
	RuleId        string   `json:"rule_id"`
	AffectedDRIds []string `json:"affected_dr_ids"`
}

// ruleTraces is the static traceability table. Built-in check ids first,
// then the UC1 pack rule ids.
var ruleTraces = []RuleTrace{
	{RuleId: "mandatory_header_fields", AffectedDRIds: []string{"IBT-001", "IBT-002", "IBT-003", "IBT-005", "IBT-027", "IBT-031", "IBT-044", "IBT-048", "IBT-109", "IBT-110", "IBT-112", "IBT-115"}},
	{RuleId: "mandatory_line_fields", AffectedDRIds: []string{"IBT-126", "IBT-129", "IBT-131", "IBT-146", "IBT-153"}},
	{RuleId: "line_header_integrity", AffectedDRIds: []string{"IBT-126"}},
	{RuleId: "buyer_reference_integrity", AffectedDRIds: []string{"IBT-046"}},
	{RuleId: "header_total_reconciliation", AffectedDRIds: []string{"IBT-106", "IBT-109", "IBT-112"}},
	{RuleId: "vat_amount_reconciliation", AffectedDRIds: []string{"IBT-110", "IBT-116", "IBT-117", "IBT-119"}},
	{RuleId: "line_amount_reconciliation", AffectedDRIds: []string{"IBT-129", "IBT-131", "IBT-146"}},
	{RuleId: "currency_allowed", AffectedDRIds: []string{"IBT-005"}},
	{RuleId: "vat_rate_allowed", AffectedDRIds: []string{"IBT-119"}},
	{RuleId: "invoice_type_code_allowed", AffectedDRIds: []string{"IBT-003"}},
	{RuleId: "payment_means_allowed", AffectedDRIds: []string{"IBT-081"}},
	{RuleId: "subdivision_allowed", AffectedDRIds: []string{"IBT-039", "IBT-054"}},
	{RuleId: "trn_format", AffectedDRIds: []string{"IBT-031", "IBT-048"}},
	{RuleId: "country_format", AffectedDRIds: []string{"IBT-040", "IBT-055"}},
	{RuleId: "currency_format", AffectedDRIds: []string{"IBT-005"}},
	{RuleId: "date_format", AffectedDRIds: []string{"IBT-002", "IBT-009"}},
	{RuleId: "organization_profile_trn", AffectedDRIds: []string{"IBT-031", "IBT-048"}},

	{RuleId: "UAE-UC1-CHK-001", AffectedDRIds: []string{"IBT-001"}},
	{RuleId: "UAE-UC1-CHK-002", AffectedDRIds: []string{"IBT-002"}},
	{RuleId: "UAE-UC1-CHK-003", AffectedDRIds: []string{"IBT-003"}},
	{RuleId: "UAE-UC1-CHK-004", AffectedDRIds: []string{"IBT-005"}},
	{RuleId: "UAE-UC1-CHK-005", AffectedDRIds: []string{"IBT-027"}},
	{RuleId: "UAE-UC1-CHK-006", AffectedDRIds: []string{"IBT-031"}},
	{RuleId: "UAE-UC1-CHK-007", AffectedDRIds: []string{"IBT-034"}},
	{RuleId: "UAE-UC1-CHK-008", AffectedDRIds: []string{"IBT-040"}},
	{RuleId: "UAE-UC1-CHK-009", AffectedDRIds: []string{"IBT-039"}},
	{RuleId: "UAE-UC1-CHK-010", AffectedDRIds: []string{"IBT-044"}},
	{RuleId: "UAE-UC1-CHK-011", AffectedDRIds: []string{"IBT-048"}},
	{RuleId: "UAE-UC1-CHK-012", AffectedDRIds: []string{"IBT-049"}},
	{RuleId: "UAE-UC1-CHK-013", AffectedDRIds: []string{"IBT-055"}},
	{RuleId: "UAE-UC1-CHK-014", AffectedDRIds: []string{"IBT-054"}},
	{RuleId: "UAE-UC1-CHK-015", AffectedDRIds: []string{"IBT-081"}},
	{RuleId: "UAE-UC1-CHK-016", AffectedDRIds: []string{"IBT-109", "IBT-110", "IBT-112"}},
	{RuleId: "UAE-UC1-CHK-017", AffectedDRIds: []string{"IBT-112", "IBT-115"}},
	{RuleId: "UAE-UC1-CHK-018", AffectedDRIds: []string{"IBT-119"}},
	{RuleId: "UAE-UC1-CHK-019", AffectedDRIds: []string{"IBT-118"}},
	{RuleId: "UAE-UC1-CHK-020", AffectedDRIds: []string{"IBT-046"}},
}

var (
	traceByRule  map[string][]string
	traceIdxOnce sync.Once
)

// RuleTraces returns the full traceability table. Read-only for callers.
func RuleTraces() []RuleTrace {
	return ruleTraces
}

func buildTraceIndex() {
	traceByRule = make(map[string][]string, len(ruleTraces))
	for _, rt := range ruleTraces {
		traceByRule[rt.RuleId] = rt.AffectedDRIds
	}
}

// AffectedDRs returns the DR ids a rule affects, or nil for unknown rules.
func AffectedDRs(ruleId string) []string {
	traceIdxOnce.Do(buildTraceIndex)
	return traceByRule[ruleId]
}
