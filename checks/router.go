package checks

import (
	"fmt"

	"github.com/veritaxlabs/pintae_backend/models"
)

// GetRulesetForDirection is the seam where direction-specific rule subsets
// are selected. Today each direction maps to itself; the direction-sensitive
// behavior lives in the rules (AP-only supplier_id, TRN ownership sides).
func GetRulesetForDirection(direction models.Direction) models.Direction {
	return direction
}

// OrganizationProfileCheckId tags the exceptions produced by the TRN
// ownership check.
const OrganizationProfileCheckId = "organization_profile_trn"

// BuildOrganizationProfileExceptions verifies that "our" side of every
// invoice carries one of the organization's registered TRNs. AR: we issued
// it, seller_trn must be ours. AP: we received it, the resolved buyer's TRN
// must be ours. One offending header yields exactly one exception however
// many TRNs the profile lists.
func BuildOrganizationProfileExceptions(profile *models.OrganizationProfile, direction models.Direction, dc *models.DataContext) []models.Exception {
	if profile == nil || len(profile.OurEntityTRNs) == 0 {
		return nil
	}

	var out []models.Exception
	for i := range dc.Headers {
		h := &dc.Headers[i]

		var ourTRN, localField string
		switch direction {
		case models.DirectionAP:
			localField = "buyer_trn"
			if buyer, ok := dc.BuyerById(h.BuyerId); ok {
				ourTRN = buyer.BuyerTRN
			}
		default:
			localField = "seller_trn"
			ourTRN = h.SellerTRN
		}

		if profile.ContainsTRN(ourTRN) {
			continue
		}
		out = append(out, models.Exception{
			RuleId:    OrganizationProfileCheckId,
			Severity:  models.SeverityHigh,
			Field:     localField,
			Message:   fmt.Sprintf("%s %q is not one of the organization's registered TRNs", localField, ourTRN),
			InvoiceId: h.InvoiceId,
			Direction: direction,
		})
	}
	return out
}
