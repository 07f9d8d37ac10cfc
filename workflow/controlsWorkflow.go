package workflow

import (
	"github.com/veritaxlabs/pintae_backend/registry"
)

// ControlsEvidence is the audit-facing view over the controls registry: which
// controls exist, which DRs they reach and which DRs no control reaches.
type ControlsEvidence struct {
	RegistryVersion string              `json:"registry_version"`
	Controls        []registry.Control  `json:"controls"`
	CoveredDRIds    []string            `json:"covered_dr_ids"`
	UncoveredDRIds  []string            `json:"uncovered_dr_ids"`
	ControlsByDR    map[string][]string `json:"controls_by_dr"`
}

// BuildControlsEvidence assembles the evidence view from the memoized
// registries. Cheap to call repeatedly.
func BuildControlsEvidence() *ControlsEvidence {
	reg := registry.GetControlsRegistry()
	covered := reg.CoveredDRIds()

	coveredSet := make(map[string]bool, len(covered))
	byDR := make(map[string][]string, len(covered))
	for _, drId := range covered {
		coveredSet[drId] = true
		for _, ctl := range reg.ControlsForDR(drId) {
			byDR[drId] = append(byDR[drId], ctl.Id)
		}
	}

	var uncovered []string
	for _, f := range registry.UC1Fields() {
		if !coveredSet[f.IBTReference] {
			uncovered = append(uncovered, f.IBTReference)
		}
	}

	return &ControlsEvidence{
		RegistryVersion: registry.RegistryVersion,
		Controls:        reg.Controls,
		CoveredDRIds:    covered,
		UncoveredDRIds:  uncovered,
		ControlsByDR:    byDR,
	}
}
