package checks

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veritaxlabs/pintae_backend/config"
	"github.com/veritaxlabs/pintae_backend/models"
)

// PredicateType is the closed set of primitive operations every rule in the
// engine is built from. Built-in checks, pack rules and custom checks all
// compile down to these, interpreted by Rule.Evaluate.
type PredicateType string

const (
	PredicatePresence         PredicateType = "presence"
	PredicatePattern          PredicateType = "pattern"
	PredicateEnum             PredicateType = "enum"
	PredicateNumericTolerance PredicateType = "numeric_tolerance"
	PredicateCrossReference   PredicateType = "cross_reference"
)

type Scope string

const (
	ScopeHeader Scope = "header"
	ScopeLine   Scope = "line"
	ScopeBuyer  Scope = "buyer"
)

// Rule is one declarative check rule. Which config fields matter depends on
// the predicate:
//   - presence: Field, or Fields for several at once (row-major order)
//   - pattern: Field + Pattern; empty values are skipped
//   - enum: Field + Allowed; empty values are skipped
//   - numeric_tolerance: Left + Right operand expressions (operand names
//     and numeric literals joined by + and -), optional Operator (default
//     "=") and Tolerance (default the conformance tolerance)
//   - cross_reference: Field holding the key + Target index name
//     (buyers, headers, lines); empty keys are skipped except for the
//     lines target, where the row itself is the subject
type Rule struct {
	Id        string           `json:"id" yaml:"id"`
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Severity  models.Severity  `json:"severity" yaml:"severity"`
	Scope     Scope            `json:"scope" yaml:"scope"`
	Predicate PredicateType    `json:"predicate" yaml:"predicate"`
	Field     string           `json:"field,omitempty" yaml:"field,omitempty"`
	Fields    []string         `json:"fields,omitempty" yaml:"fields,omitempty"`
	Pattern   string           `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Allowed   []string         `json:"allowed,omitempty" yaml:"allowed,omitempty"`
	Left      string           `json:"left,omitempty" yaml:"left,omitempty"`
	Right     string           `json:"right,omitempty" yaml:"right,omitempty"`
	Operator  string           `json:"operator,omitempty" yaml:"operator,omitempty"`
	Tolerance string           `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
	Target    string           `json:"target,omitempty" yaml:"target,omitempty"`
	Direction models.Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Message   string           `json:"message,omitempty" yaml:"message,omitempty"`
}

// Evaluate runs the rule over the context. Exceptions come out in input row
// order. A rule scoped to the other direction evaluates to nothing.
func (r Rule) Evaluate(dc *models.DataContext, direction models.Direction) []models.Exception {
	if r.Direction != "" && r.Direction != direction {
		return nil
	}
	switch r.Predicate {
	case PredicatePresence:
		return r.evalPresence(dc)
	case PredicatePattern:
		return r.evalPattern(dc)
	case PredicateEnum:
		return r.evalEnum(dc)
	case PredicateNumericTolerance:
		return r.evalNumeric(dc)
	case PredicateCrossReference:
		return r.evalCrossReference(dc)
	}
	return nil
}

type row struct {
	invoiceId string
	get       func(field string) string
	operand   func(name string) (decimal.Decimal, bool)
}

func (r Rule) rows(dc *models.DataContext) []row {
	switch r.Scope {
	case ScopeHeader:
		out := make([]row, 0, len(dc.Headers))
		for i := range dc.Headers {
			h := &dc.Headers[i]
			out = append(out, row{
				invoiceId: h.InvoiceId,
				get:       func(f string) string { return headerField(h, f) },
				operand:   func(n string) (decimal.Decimal, bool) { return headerOperand(dc, h, n) },
			})
		}
		return out
	case ScopeLine:
		out := make([]row, 0, len(dc.Lines))
		for i := range dc.Lines {
			l := &dc.Lines[i]
			out = append(out, row{
				invoiceId: l.InvoiceId,
				get:       func(f string) string { return lineField(l, f) },
				operand:   func(n string) (decimal.Decimal, bool) { return lineOperand(l, n) },
			})
		}
		return out
	case ScopeBuyer:
		out := make([]row, 0, len(dc.Buyers))
		for i := range dc.Buyers {
			b := &dc.Buyers[i]
			out = append(out, row{
				get:     func(f string) string { return buyerField(b, f) },
				operand: func(string) (decimal.Decimal, bool) { return decimal.Zero, false },
			})
		}
		return out
	}
	return nil
}

func (r Rule) exception(rw row, field, message string) models.Exception {
	return models.Exception{
		RuleId:    r.Id,
		Severity:  r.Severity,
		Field:     field,
		Message:   message,
		InvoiceId: rw.invoiceId,
	}
}

func (r Rule) evalPresence(dc *models.DataContext) []models.Exception {
	fields := r.Fields
	if len(fields) == 0 && r.Field != "" {
		fields = []string{r.Field}
	}
	var out []models.Exception
	for _, rw := range r.rows(dc) {
		for _, f := range fields {
			if strings.TrimSpace(rw.get(f)) == "" {
				msg := r.Message
				if msg == "" {
					msg = fmt.Sprintf("mandatory field %s is missing", f)
				}
				out = append(out, r.exception(rw, f, msg))
			}
		}
	}
	return out
}

func (r Rule) evalPattern(dc *models.DataContext) []models.Exception {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		// Bad pattern: the rule is non-matching, never a fault.
		return nil
	}
	var out []models.Exception
	for _, rw := range r.rows(dc) {
		v := strings.TrimSpace(rw.get(r.Field))
		if v == "" || re.MatchString(v) {
			continue
		}
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("field %s value %q does not match pattern %s", r.Field, v, r.Pattern)
		}
		out = append(out, r.exception(rw, r.Field, msg))
	}
	return out
}

func (r Rule) evalEnum(dc *models.DataContext) []models.Exception {
	allowed := make(map[string]bool, len(r.Allowed))
	for _, a := range r.Allowed {
		allowed[a] = true
	}
	var out []models.Exception
	for _, rw := range r.rows(dc) {
		v := strings.TrimSpace(rw.get(r.Field))
		if v == "" || allowed[v] {
			continue
		}
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("field %s value %q is not an allowed value", r.Field, v)
		}
		out = append(out, r.exception(rw, r.Field, msg))
	}
	return out
}

func (r Rule) evalNumeric(dc *models.DataContext) []models.Exception {
	tolerance := config.Conformance().MonetaryTolerance
	if r.Tolerance != "" {
		if t, err := decimal.NewFromString(r.Tolerance); err == nil {
			tolerance = t
		}
	}
	operator := r.Operator
	if operator == "" {
		operator = "="
	}

	var out []models.Exception
	for _, rw := range r.rows(dc) {
		left, okL := evalOperandExpr(rw, r.Left)
		right, okR := evalOperandExpr(rw, r.Right)
		if !okL || !okR {
			continue
		}
		if compareWithTolerance(left, right, operator, tolerance) {
			continue
		}
		field := r.Field
		if field == "" {
			field = r.Left
		}
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("%s (%s) and %s (%s) differ by more than %s",
				r.Left, left.StringFixed(2), r.Right, right.StringFixed(2), tolerance.String())
		}
		out = append(out, r.exception(rw, field, msg))
	}
	return out
}

// evalOperandExpr resolves a numeric operand expression: an operand name, a
// literal number, or several of those joined by + and - evaluated left to
// right. One unresolvable term makes the whole expression unresolvable and
// the row is skipped.
func evalOperandExpr(rw row, expr string) (decimal.Decimal, bool) {
	rest := strings.TrimSpace(expr)
	if rest == "" {
		return decimal.Zero, false
	}
	negate := false
	if strings.HasPrefix(rest, "-") {
		negate = true
		rest = strings.TrimSpace(rest[1:])
	}

	total := decimal.Zero
	for {
		idx := strings.IndexAny(rest, "+-")
		term := rest
		if idx >= 0 {
			term = rest[:idx]
		}
		term = strings.TrimSpace(term)
		if term == "" {
			return decimal.Zero, false
		}

		v, ok := rw.operand(term)
		if !ok {
			parsed, err := decimal.NewFromString(term)
			if err != nil {
				return decimal.Zero, false
			}
			v = parsed
		}
		if negate {
			v = v.Neg()
		}
		total = total.Add(v)

		if idx < 0 {
			return total, true
		}
		negate = rest[idx] == '-'
		rest = strings.TrimSpace(rest[idx+1:])
		if rest == "" {
			return decimal.Zero, false
		}
	}
}

func compareWithTolerance(left, right decimal.Decimal, operator string, tolerance decimal.Decimal) bool {
	diff := left.Sub(right)
	switch operator {
	case "=", "==", "equals":
		return diff.Abs().LessThanOrEqual(tolerance)
	case "!=":
		return diff.Abs().GreaterThan(tolerance)
	case "<":
		return left.LessThan(right)
	case "<=":
		return left.LessThanOrEqual(right.Add(tolerance))
	case ">":
		return left.GreaterThan(right)
	case ">=":
		return left.Add(tolerance).GreaterThanOrEqual(right)
	}
	return true
}

func (r Rule) evalCrossReference(dc *models.DataContext) []models.Exception {
	var out []models.Exception
	for _, rw := range r.rows(dc) {
		key := strings.TrimSpace(rw.get(r.Field))
		var resolved bool
		switch r.Target {
		case "buyers":
			if key == "" {
				continue
			}
			_, resolved = dc.BuyerById(key)
		case "headers":
			if key == "" {
				continue
			}
			_, resolved = dc.HeaderById(key)
		case "lines":
			resolved = len(dc.LinesFor(key)) > 0
		default:
			continue
		}
		if resolved {
			continue
		}
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("%s %q does not resolve in %s", r.Field, key, r.Target)
		}
		out = append(out, r.exception(rw, r.Field, msg))
	}
	return out
}

func headerField(h *models.InvoiceHeader, field string) string {
	switch field {
	case "invoice_id":
		return h.InvoiceId
	case "invoice_number":
		return h.InvoiceNumber
	case "supplier_id":
		return h.SupplierId
	case "seller_name":
		return h.SellerName
	case "seller_trn":
		return h.SellerTRN
	case "seller_electronic_address":
		return h.SellerElectronicAddress
	case "seller_country":
		return h.SellerCountry
	case "seller_city":
		return h.SellerCity
	case "seller_subdivision":
		return h.SellerSubdivision
	case "buyer_id":
		return h.BuyerId
	case "currency":
		return h.Currency
	case "invoice_date":
		return h.InvoiceDate
	case "due_date":
		return h.DueDate
	case "total_excl_vat":
		return h.TotalExclVAT.String()
	case "vat_total":
		return h.VATTotal.String()
	case "total_incl_vat":
		return h.TotalInclVAT.String()
	case "amount_due":
		return h.AmountDue.String()
	case "tax_category_code":
		return h.TaxCategoryCode
	case "tax_category_rate":
		return h.TaxCategoryRate.String()
	case "invoice_type_code":
		return h.InvoiceTypeCode
	case "payment_means_code":
		return h.PaymentMeansCode
	case "payment_terms":
		return h.PaymentTerms
	}
	return ""
}

// headerOperand resolves numeric operands, including the derived quantities
// reconciliations compare against. sum_of_line_nets is unresolvable for a
// header without lines; the missing-lines check owns that case.
func headerOperand(dc *models.DataContext, h *models.InvoiceHeader, name string) (decimal.Decimal, bool) {
	switch name {
	case "total_excl_vat":
		return h.TotalExclVAT, true
	case "vat_total":
		return h.VATTotal, true
	case "total_incl_vat":
		return h.TotalInclVAT, true
	case "amount_due":
		return h.AmountDue, true
	case "tax_category_rate":
		return h.TaxCategoryRate, true
	case "sum_of_line_nets":
		lines := dc.LinesFor(h.InvoiceId)
		if len(lines) == 0 {
			return decimal.Zero, false
		}
		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(l.LineNet)
		}
		return sum, true
	case "computed_vat":
		return h.TotalExclVAT.Mul(h.TaxCategoryRate).Div(decimal.NewFromInt(100)), true
	case "computed_total":
		return h.TotalExclVAT.Add(h.VATTotal), true
	}
	return decimal.Zero, false
}

func lineField(l *models.InvoiceLine, field string) string {
	switch field {
	case "line_id":
		return l.LineId
	case "invoice_id":
		return l.InvoiceId
	case "line_number":
		return strconv.Itoa(l.LineNumber)
	case "item_name":
		return l.ItemName
	case "quantity":
		return l.Quantity.String()
	case "unit_price":
		return l.UnitPrice.String()
	case "discount":
		return l.Discount.String()
	case "line_net":
		return l.LineNet.String()
	case "line_vat":
		return l.LineVAT.String()
	case "tax_category_code":
		return l.TaxCategoryCode
	}
	return ""
}

func lineOperand(l *models.InvoiceLine, name string) (decimal.Decimal, bool) {
	switch name {
	case "quantity":
		return l.Quantity, true
	case "unit_price":
		return l.UnitPrice, true
	case "discount":
		return l.Discount, true
	case "line_net":
		return l.LineNet, true
	case "line_vat":
		return l.LineVAT, true
	case "computed_line_net":
		return l.Quantity.Mul(l.UnitPrice).Sub(l.Discount), true
	}
	return decimal.Zero, false
}

func buyerField(b *models.Buyer, field string) string {
	switch field {
	case "buyer_id":
		return b.BuyerId
	case "buyer_name":
		return b.BuyerName
	case "buyer_trn":
		return b.BuyerTRN
	case "address_line1":
		return b.AddressLine1
	case "address_line2":
		return b.AddressLine2
	case "country":
		return b.Country
	case "city":
		return b.City
	case "subdivision":
		return b.Subdivision
	case "electronic_address":
		return b.ElectronicAddress
	}
	return ""
}
