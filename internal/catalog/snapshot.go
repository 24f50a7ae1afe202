package catalog

import (
	"sort"
	"time"
)

// Snapshot is a fully-materialized, read-only view of the configuration the
// engine consumes. A calculation holds one snapshot for its whole pass; the
// engine never reaches back to a data store mid-evaluation.
type Snapshot struct {
	LoadedAt time.Time `json:"loaded_at"`

	ProductTypes   map[string]ProductType   `json:"product_types"`
	Styles         []ProductStyle           `json:"styles"`
	ComponentTypes map[string]ComponentType `json:"component_types"`
	Templates      []FormulaTemplate        `json:"templates"`
	Eligibility    []EligibilityRule        `json:"eligibility"`
	Materials      map[string]Material      `json:"materials"`
	LaborCodes     map[string]LaborCode     `json:"labor_codes"`
	RateSheets     map[string]RateSheet     `json:"rate_sheets"`
	PriceBooks     map[string]PriceBook     `json:"price_books"`
	Communities    map[string]Community     `json:"communities"`
	Clients        map[string]Client        `json:"clients"`
	BusinessUnits  map[string]BusinessUnit  `json:"business_units"`
}

// Style returns the style record for a product type, if configured.
func (s *Snapshot) Style(productType, styleCode string) (ProductStyle, bool) {
	for _, style := range s.Styles {
		if style.ProductTypeCode == productType && style.Code == styleCode && style.IsActive {
			return style, true
		}
	}
	return ProductStyle{}, false
}

// TemplatesFor returns the active templates matching a (productType,
// componentType) pair, any style.
func (s *Snapshot) TemplatesFor(productType, componentType string) []FormulaTemplate {
	var out []FormulaTemplate
	for _, t := range s.Templates {
		if t.IsActive && t.ProductTypeCode == productType && t.ComponentTypeCode == componentType {
			out = append(out, t)
		}
	}
	return out
}

// ComponentsFor returns the component types the product type needs, ordered by
// component sequence then code. A component is needed when at least one active
// template exists for it.
func (s *Snapshot) ComponentsFor(productType string) []ComponentType {
	seen := make(map[string]bool)
	var out []ComponentType
	for _, t := range s.Templates {
		if !t.IsActive || t.ProductTypeCode != productType || seen[t.ComponentTypeCode] {
			continue
		}
		ct, ok := s.ComponentTypes[t.ComponentTypeCode]
		if !ok {
			continue
		}
		seen[t.ComponentTypeCode] = true
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// RulesFor returns the active eligibility rules for a (productType,
// componentType) pair ordered by display order then rule ID, so results never
// depend on row-arrival order.
func (s *Snapshot) RulesFor(productType, componentType string) []EligibilityRule {
	var out []EligibilityRule
	for _, r := range s.Eligibility {
		if r.IsActive && r.ProductTypeCode == productType && r.ComponentTypeCode == componentType {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}
