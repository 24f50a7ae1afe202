package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Validate runs the load-time integrity checks over a snapshot and returns
// every violation found. Ambiguities that the engine would otherwise hit at
// calculation time — duplicate template tuples, equal-priority ties, double
// eligibility defaults, undefined margins — are configuration errors and are
// reported here instead of being resolved arbitrarily at runtime.
func Validate(s *Snapshot) []error {
	var violations []error
	violations = append(violations, validateTemplates(s)...)
	violations = append(violations, validateEligibility(s)...)
	violations = append(violations, validateRateSheets(s)...)
	violations = append(violations, validateReferences(s)...)
	return violations
}

func validateTemplates(s *Snapshot) []error {
	var violations []error

	// No two active templates may share (productType, style, componentType).
	seen := make(map[string]int64)
	for _, t := range s.Templates {
		if !t.IsActive {
			continue
		}
		key := t.ProductTypeCode + "/" + t.StyleCode + "/" + t.ComponentTypeCode
		if prev, ok := seen[key]; ok {
			violations = append(violations, ConfigErr(key, ErrDuplicateTemplate,
				"templates %d and %d share the same tuple", prev, t.ID))
			continue
		}
		seen[key] = t.ID

		if !t.RoundingLevel.Valid() {
			violations = append(violations, ConfigErr(key, ErrUnknownReference,
				"rounding level %q", t.RoundingLevel))
		}
	}

	// Equal-priority ties between a style-specific template and a wildcard
	// (or between two templates visible to the same style) would force the
	// resolver to guess. Fail loudly at load instead.
	type group struct{ pt, ct string }
	grouped := make(map[group][]FormulaTemplate)
	for _, t := range s.Templates {
		if t.IsActive {
			g := group{t.ProductTypeCode, t.ComponentTypeCode}
			grouped[g] = append(grouped[g], t)
		}
	}
	for g, templates := range grouped {
		for i := 0; i < len(templates); i++ {
			for j := i + 1; j < len(templates); j++ {
				a, b := templates[i], templates[j]
				if a.Priority != b.Priority {
					continue
				}
				// A tie only matters when both templates can match the same
				// style: wildcard ties with everything.
				if a.StyleCode == b.StyleCode || a.IsWildcard() || b.IsWildcard() {
					violations = append(violations, ConfigErr(
						fmt.Sprintf("%s/%s", g.pt, g.ct), ErrAmbiguousFormula,
						"templates %d and %d share priority %d", a.ID, b.ID, a.Priority))
				}
			}
		}
	}
	return violations
}

func validateEligibility(s *Snapshot) []error {
	var violations []error
	type group struct{ pt, ct string }
	defaults := make(map[group][]EligibilityRule)
	for _, r := range s.Eligibility {
		if !r.IsActive {
			continue
		}
		subject := r.ProductTypeCode + "/" + r.ComponentTypeCode
		if r.OptionCode() == "" {
			violations = append(violations, ConfigErr(subject, ErrUnknownReference,
				"rule %d names neither material nor labor code", r.ID))
		}
		for _, p := range r.Filters {
			if err := p.Validate(); err != nil {
				violations = append(violations, ConfigErr(subject, ErrUnknownReference,
					"rule %d: %v", r.ID, err))
			}
		}
		if r.IsDefault {
			g := group{r.ProductTypeCode, r.ComponentTypeCode}
			defaults[g] = append(defaults[g], r)
		}
	}

	// At most one default per filter context. Two unconditional defaults, or
	// two defaults with identical filters, would force evaluation to pick one
	// arbitrarily.
	for g, rules := range defaults {
		for i := 0; i < len(rules); i++ {
			for j := i + 1; j < len(rules); j++ {
				if sameFilterContext(rules[i].Filters, rules[j].Filters) {
					violations = append(violations, ConfigErr(
						fmt.Sprintf("%s/%s", g.pt, g.ct), ErrDuplicateDefault,
						"rules %d and %d are both defaults for the same filter context",
						rules[i].ID, rules[j].ID))
				}
			}
		}
	}
	return violations
}

func sameFilterContext(a, b []Predicate) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
	for _, pa := range a {
		found := false
		for i, pb := range b {
			if matched[i] {
				continue
			}
			if samePredicate(pa, pb) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func samePredicate(a, b Predicate) bool {
	if a.Attribute != b.Attribute || a.Kind != b.Kind || a.Equals != b.Equals {
		return false
	}
	if len(a.OneOf) != len(b.OneOf) {
		return false
	}
	for i := range a.OneOf {
		if a.OneOf[i] != b.OneOf[i] {
			return false
		}
	}
	return floatPtrEq(a.Min, b.Min) && floatPtrEq(a.Max, b.Max)
}

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validateRateSheets(s *Snapshot) []error {
	var violations []error
	for id, sheet := range s.RateSheets {
		if sheet.DefaultMethod == MethodMargin &&
			sheet.DefaultMarginPercent != nil &&
			sheet.DefaultMarginPercent.GreaterThanOrEqual(hundred) {
			violations = append(violations, ConfigErr(id, ErrUndefinedMargin,
				"sheet default margin %s", sheet.DefaultMarginPercent))
		}
		for sku, item := range sheet.Items {
			if item.Method != MethodMargin || item.MarginPercent == nil {
				continue
			}
			if item.MarginPercent.GreaterThanOrEqual(hundred) && item.FixedPrice == nil {
				violations = append(violations, ConfigErr(id+"/"+sku, ErrUndefinedMargin,
					"margin %s with no fixed fallback", item.MarginPercent))
			}
		}
	}
	return violations
}

func validateReferences(s *Snapshot) []error {
	var violations []error
	for _, style := range s.Styles {
		if !style.IsActive {
			continue
		}
		if _, ok := s.ProductTypes[style.ProductTypeCode]; !ok {
			violations = append(violations, ConfigErr(style.Code, ErrUnknownReference,
				"style references product type %q", style.ProductTypeCode))
		}
	}
	for _, t := range s.Templates {
		if !t.IsActive {
			continue
		}
		subject := t.ProductTypeCode + "/" + t.StyleCode + "/" + t.ComponentTypeCode
		if _, ok := s.ProductTypes[t.ProductTypeCode]; !ok {
			violations = append(violations, ConfigErr(subject, ErrUnknownReference,
				"template %d references product type %q", t.ID, t.ProductTypeCode))
		}
		if _, ok := s.ComponentTypes[t.ComponentTypeCode]; !ok {
			violations = append(violations, ConfigErr(subject, ErrUnknownReference,
				"template %d references component type %q", t.ID, t.ComponentTypeCode))
		}
		if !t.IsWildcard() {
			if _, ok := s.Style(t.ProductTypeCode, t.StyleCode); !ok {
				violations = append(violations, ConfigErr(subject, ErrUnknownReference,
					"template %d references style %q", t.ID, t.StyleCode))
			}
		}
	}
	for _, r := range s.Eligibility {
		if !r.IsActive {
			continue
		}
		subject := r.ProductTypeCode + "/" + r.ComponentTypeCode
		if r.MaterialCode != "" {
			if _, ok := s.Materials[r.MaterialCode]; !ok {
				violations = append(violations, ConfigErr(subject, ErrUnknownReference,
					"rule %d references material %q", r.ID, r.MaterialCode))
			}
		}
		if r.LaborCodeCode != "" {
			if _, ok := s.LaborCodes[r.LaborCodeCode]; !ok {
				violations = append(violations, ConfigErr(subject, ErrUnknownReference,
					"rule %d references labor code %q", r.ID, r.LaborCodeCode))
			}
		}
	}
	for id, community := range s.Communities {
		if community.RateSheetID != "" {
			if _, ok := s.RateSheets[community.RateSheetID]; !ok {
				violations = append(violations, ConfigErr(id, ErrUnknownReference,
					"community references rate sheet %q", community.RateSheetID))
			}
		}
	}
	for id, client := range s.Clients {
		if client.RateSheetID != "" {
			if _, ok := s.RateSheets[client.RateSheetID]; !ok {
				violations = append(violations, ConfigErr(id, ErrUnknownReference,
					"client references rate sheet %q", client.RateSheetID))
			}
		}
	}
	for id, bu := range s.BusinessUnits {
		if bu.RateSheetID != "" {
			if _, ok := s.RateSheets[bu.RateSheetID]; !ok {
				violations = append(violations, ConfigErr(id, ErrUnknownReference,
					"business unit references rate sheet %q", bu.RateSheetID))
			}
		}
	}
	return violations
}
