package checks

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/veritaxlabs/pintae_backend/models"
	"github.com/veritaxlabs/pintae_backend/utils"
)

type CustomRuleType string

const (
	CustomRuleMissing   CustomRuleType = "missing"
	CustomRuleDuplicate CustomRuleType = "duplicate"
	CustomRuleMath      CustomRuleType = "math"
	CustomRuleRegex     CustomRuleType = "regex"
	CustomRuleFormula   CustomRuleType = "custom_formula"
)

// CustomCheckParameters carries the per-type parameters. Which ones are
// required depends on the declared rule type; CompileCustomCheck enforces
// that before anything executes.
type CustomCheckParameters struct {
	Scope           Scope  `json:"scope,omitempty" yaml:"scope,omitempty"`
	Field           string `json:"field,omitempty" yaml:"field,omitempty"`
	Pattern         string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	LeftExpression  string `json:"left_expression,omitempty" yaml:"left_expression,omitempty"`
	Operator        string `json:"operator,omitempty" yaml:"operator,omitempty"`
	RightExpression string `json:"right_expression,omitempty" yaml:"right_expression,omitempty"`
	Tolerance       string `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
	Formula         string `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// CustomCheckConfig is a user-authored check. IsActive nil means active;
// an explicitly inactive config still compiles and registers, it just never
// produces exceptions.
type CustomCheckConfig struct {
	Id         string                `json:"id" yaml:"id" validate:"required"`
	Name       string                `json:"name,omitempty" yaml:"name,omitempty"`
	RuleType   CustomRuleType        `json:"rule_type" yaml:"rule_type" validate:"required"`
	Severity   models.Severity       `json:"severity,omitempty" yaml:"severity,omitempty"`
	IsActive   *bool                 `json:"is_active,omitempty" yaml:"is_active,omitempty"`
	Parameters CustomCheckParameters `json:"parameters" yaml:"parameters"`
}

var customValidate = validator.New()

// CompiledCheck is a registered custom check, ready to run.
type CompiledCheck struct {
	Config CustomCheckConfig

	// rule is the compiled predicate for every type except duplicate,
	// which needs cross-row state.
	rule *Rule
}

// Active reports whether the check executes. Inactive checks stay
// registered so they can be toggled without recompiling.
func (c *CompiledCheck) Active() bool {
	return c.Config.IsActive == nil || *c.Config.IsActive
}

// CompileCustomCheck validates a config against its declared rule type and
// compiles it. Configuration problems fail here, at registration, never
// during a run.
func CompileCustomCheck(cfg CustomCheckConfig) (*CompiledCheck, error) {
	if err := customValidate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrorInvalidCheckConfig, err)
	}

	if cfg.Severity == "" {
		cfg.Severity = models.SeverityMedium
	}
	if !cfg.Severity.Valid() {
		return nil, fmt.Errorf("%w: check %s has severity %q", utils.ErrorInvalidCheckConfig, cfg.Id, cfg.Severity)
	}
	if cfg.Parameters.Scope == "" {
		cfg.Parameters.Scope = ScopeHeader
	}
	switch cfg.Parameters.Scope {
	case ScopeHeader, ScopeLine, ScopeBuyer:
	default:
		return nil, fmt.Errorf("%w: check %s has scope %q", utils.ErrorInvalidCheckConfig, cfg.Id, cfg.Parameters.Scope)
	}

	compiled := &CompiledCheck{Config: cfg}
	p := cfg.Parameters

	switch cfg.RuleType {
	case CustomRuleMissing:
		if p.Field == "" {
			return nil, missingParam(cfg.Id, "field")
		}
		compiled.rule = &Rule{
			Id: cfg.Id, Severity: cfg.Severity, Scope: p.Scope,
			Predicate: PredicatePresence, Field: p.Field,
		}
	case CustomRuleDuplicate:
		if p.Field == "" {
			return nil, missingParam(cfg.Id, "field")
		}
	case CustomRuleRegex:
		if p.Field == "" {
			return nil, missingParam(cfg.Id, "field")
		}
		if p.Pattern == "" {
			return nil, missingParam(cfg.Id, "pattern")
		}
		compiled.rule = &Rule{
			Id: cfg.Id, Severity: cfg.Severity, Scope: p.Scope,
			Predicate: PredicatePattern, Field: p.Field, Pattern: p.Pattern,
		}
	case CustomRuleMath:
		if p.LeftExpression == "" {
			return nil, missingParam(cfg.Id, "left_expression")
		}
		if p.Operator == "" {
			return nil, missingParam(cfg.Id, "operator")
		}
		if p.RightExpression == "" {
			return nil, missingParam(cfg.Id, "right_expression")
		}
		if err := checkOperator(cfg.Id, p.Operator); err != nil {
			return nil, err
		}
		if err := checkTolerance(cfg.Id, p.Tolerance); err != nil {
			return nil, err
		}
		compiled.rule = &Rule{
			Id: cfg.Id, Severity: cfg.Severity, Scope: p.Scope,
			Predicate: PredicateNumericTolerance,
			Left:      p.LeftExpression, Right: p.RightExpression,
			Operator: p.Operator, Tolerance: p.Tolerance,
		}
	case CustomRuleFormula:
		if p.Formula == "" {
			return nil, missingParam(cfg.Id, "formula")
		}
		tokens := strings.Fields(p.Formula)
		if len(tokens) != 3 {
			return nil, fmt.Errorf("%w: check %s formula must be \"<left> <operator> <right>\"",
				utils.ErrorInvalidCheckConfig, cfg.Id)
		}
		if err := checkOperator(cfg.Id, tokens[1]); err != nil {
			return nil, err
		}
		if err := checkTolerance(cfg.Id, p.Tolerance); err != nil {
			return nil, err
		}
		compiled.rule = &Rule{
			Id: cfg.Id, Severity: cfg.Severity, Scope: p.Scope,
			Predicate: PredicateNumericTolerance,
			Left:      tokens[0], Right: tokens[2],
			Operator: tokens[1], Tolerance: p.Tolerance,
		}
	default:
		return nil, fmt.Errorf("%w: check %s has rule type %q",
			utils.ErrorInvalidCheckConfig, cfg.Id, cfg.RuleType)
	}
	return compiled, nil
}

func missingParam(checkId, param string) error {
	return fmt.Errorf("%w: check %s requires parameter %q", utils.ErrorInvalidCheckConfig, checkId, param)
}

func checkOperator(checkId, op string) error {
	switch op {
	case "=", "==", "equals", "!=", "<", "<=", ">", ">=":
		return nil
	}
	return fmt.Errorf("%w: check %s has operator %q", utils.ErrorInvalidCheckConfig, checkId, op)
}

func checkTolerance(checkId, tolerance string) error {
	if tolerance == "" {
		return nil
	}
	if _, err := decimal.NewFromString(tolerance); err != nil {
		return fmt.Errorf("%w: check %s has tolerance %q", utils.ErrorInvalidCheckConfig, checkId, tolerance)
	}
	return nil
}

// Run evaluates the compiled check. Inactive checks report an empty result
// under their id so dashboards still list them.
func (c *CompiledCheck) Run(dc *models.DataContext, direction models.Direction) models.CheckResult {
	result := models.CheckResult{CheckId: c.Config.Id, Exceptions: []models.Exception{}}
	if !c.Active() {
		return result
	}
	if c.rule != nil {
		result.Exceptions = append(result.Exceptions, c.rule.Evaluate(dc, direction)...)
		return result
	}
	result.Exceptions = append(result.Exceptions, c.evalDuplicate(dc)...)
	return result
}

// evalDuplicate flags every repeat occurrence of a value; the first
// occurrence stays clean. Empty values never count as duplicates of each
// other.
func (c *CompiledCheck) evalDuplicate(dc *models.DataContext) []models.Exception {
	scopeRule := Rule{Scope: c.Config.Parameters.Scope}
	field := c.Config.Parameters.Field

	seen := make(map[string]bool)
	var out []models.Exception
	for _, rw := range scopeRule.rows(dc) {
		v := strings.TrimSpace(rw.get(field))
		if v == "" {
			continue
		}
		if seen[v] {
			out = append(out, models.Exception{
				RuleId:    c.Config.Id,
				Severity:  c.Config.Severity,
				Field:     field,
				Message:   fmt.Sprintf("duplicate value %q for field %s", v, field),
				InvoiceId: rw.invoiceId,
			})
			continue
		}
		seen[v] = true
	}
	return out
}
