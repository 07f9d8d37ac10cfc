package checks

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/veritaxlabs/pintae_backend/utils"
)

//go:embed uc1pack.yaml
var uc1PackYAML []byte

// CheckPack is a versioned declarative rule collection for one regulatory
// profile. Rules are flat: no rule reads another's output, so evaluation
// order between rules never matters.
type CheckPack struct {
	Id           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Version      string `json:"version" yaml:"version"`
	Jurisdiction string `json:"jurisdiction" yaml:"jurisdiction"`
	Profile      string `json:"profile" yaml:"profile"`
	Rules        []Rule `json:"rules" yaml:"rules"`
}

var (
	uc1Pack     *CheckPack
	uc1PackErr  error
	uc1PackOnce sync.Once
)

// UC1Pack parses and validates the embedded UAE UC1 pack once per process.
func UC1Pack() (*CheckPack, error) {
	uc1PackOnce.Do(func() {
		uc1Pack, uc1PackErr = loadPack(uc1PackYAML)
	})
	return uc1Pack, uc1PackErr
}

func loadPack(raw []byte) (*CheckPack, error) {
	var pack CheckPack
	if err := yaml.Unmarshal(raw, &pack); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrorInvalidCheckConfig, err)
	}
	if pack.Id == "" || len(pack.Rules) == 0 {
		return nil, fmt.Errorf("%w: pack has no id or no rules", utils.ErrorInvalidCheckConfig)
	}

	seen := make(map[string]bool, len(pack.Rules))
	for _, r := range pack.Rules {
		if r.Id == "" {
			return nil, fmt.Errorf("%w: pack %s has a rule without id", utils.ErrorInvalidCheckConfig, pack.Id)
		}
		if seen[r.Id] {
			return nil, fmt.Errorf("%w: duplicate rule id %s", utils.ErrorInvalidCheckConfig, r.Id)
		}
		seen[r.Id] = true
		if !r.Severity.Valid() {
			return nil, fmt.Errorf("%w: rule %s has severity %q", utils.ErrorInvalidCheckConfig, r.Id, r.Severity)
		}
		switch r.Scope {
		case ScopeHeader, ScopeLine, ScopeBuyer:
		default:
			return nil, fmt.Errorf("%w: rule %s has scope %q", utils.ErrorInvalidCheckConfig, r.Id, r.Scope)
		}
		switch r.Predicate {
		case PredicatePresence, PredicatePattern, PredicateEnum, PredicateNumericTolerance, PredicateCrossReference:
		default:
			return nil, fmt.Errorf("%w: rule %s has predicate %q", utils.ErrorInvalidCheckConfig, r.Id, r.Predicate)
		}
	}
	return &pack, nil
}

// Checks exposes each pack rule as its own check, keyed by the rule id, so
// run results stay addressable per regulation clause.
func (p *CheckPack) Checks() []Check {
	out := make([]Check, 0, len(p.Rules))
	for _, r := range p.Rules {
		out = append(out, Check{Id: r.Id, Name: r.Name, Rules: []Rule{r}})
	}
	return out
}
