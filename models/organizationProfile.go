package models

import "strings"

// OrganizationProfile identifies which TRNs belong to the organization
// running the validation. Direction decides which side of each invoice must
// match one of these.
type OrganizationProfile struct {
	OurEntityTRNs []string `json:"our_entity_trns" binding:"required"`
	EntityIds     []string `json:"entity_ids"`
}

// ContainsTRN matches on trimmed values; TRNs are digit strings and ERP
// extracts pad them unpredictably.
func (p *OrganizationProfile) ContainsTRN(trn string) bool {
	needle := strings.TrimSpace(trn)
	for _, t := range p.OurEntityTRNs {
		if strings.TrimSpace(t) == needle {
			return true
		}
	}
	return false
}
