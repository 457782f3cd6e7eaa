package engine

import (
	"regexp"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/model"
	"github.com/Veraticus/spice-assistant/internal/slot"
)

// FieldUpdate is a single slot rewrite produced by the modification parser.
type FieldUpdate struct {
	Field model.Field
	Value string
}

// Apply writes the update into slots. No other slot is touched.
func (u FieldUpdate) Apply(slots map[string]string) {
	slots[u.Field] = u.Value
}

type modifyRule struct {
	pattern *regexp.Regexp
	value   func(captured string) (string, error)
	field   model.Field
}

// ModificationParser interprets edit commands such as "change amount to 120"
// against an ordered rule table. The first matching rule wins.
type ModificationParser struct {
	rules []modifyRule
}

// NewModificationParser builds the edit grammar. Amount and time values go through n.
func NewModificationParser(n *slot.Normalizer) *ModificationParser {
	verbatim := func(field model.Field) func(string) (string, error) {
		return func(captured string) (string, error) { return slot.Text(field, captured) }
	}
	rule := func(expr string, field model.Field, value func(string) (string, error)) modifyRule {
		return modifyRule{pattern: regexp.MustCompile(`^(?:change|set) ` + expr + `$`), field: field, value: value}
	}

	return &ModificationParser{rules: []modifyRule{
		rule(`amount to (.+)`, model.FieldAmount, slot.Amount),
		rule(`(?:time|date) to (.+)`, model.FieldTime, n.Time),
		rule(`category to (.+)`, model.FieldCategory, verbatim(model.FieldCategory)),
		rule(`merchant to (.+)`, model.FieldMerchant, verbatim(model.FieldMerchant)),
		rule(`operation to (income|expense)`, model.FieldOperation, operationValue),
		rule(`(?:remark|note) to (.+)`, model.FieldRemark, verbatim(model.FieldRemark)),
		rule(`location to (.+)`, model.FieldLocation, verbatim(model.FieldLocation)),
		rule(`tag to (.+)`, model.FieldTag, verbatim(model.FieldTag)),
		rule(`payment ?method to (.+)`, model.FieldPaymentMethod, verbatim(model.FieldPaymentMethod)),
	}}
}

// Parse matches the trimmed, lowercased text against the rule table, so captured
// values are stored lowercase. A matching command whose value fails to normalize is
// reported as no match.
func (p *ModificationParser) Parse(text string) (FieldUpdate, bool) {
	input := strings.ToLower(strings.TrimSpace(text))
	for _, r := range p.rules {
		m := r.pattern.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		value, err := r.value(strings.TrimSpace(m[1]))
		if err != nil {
			return FieldUpdate{}, false
		}
		return FieldUpdate{Field: r.field, Value: value}, true
	}
	return FieldUpdate{}, false
}

func operationValue(captured string) (string, error) {
	if captured == "income" {
		return string(model.OperationIncome), nil
	}
	return string(model.OperationExpense), nil
}
