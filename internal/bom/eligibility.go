package bom

import (
	"github.com/palisade-ops/palisade/internal/catalog"
)

// Option is one eligible material or labor code for a component.
type Option struct {
	Code      string `json:"code"`
	IsLabor   bool   `json:"is_labor"`
	IsDefault bool   `json:"is_default"`
}

// EligibleOptions filters the candidate materials/labor codes for a
// (productType, componentType) pair against the filter context. Rules whose
// predicates all match survive, ordered by configured display order. The
// single default, if any, is flagged.
//
// An empty result for a required component is a hard error to the caller: a
// BOM must never silently omit a component.
func EligibleOptions(s *catalog.Snapshot, productType, componentType string, ctx catalog.FilterContext) ([]Option, error) {
	var options []Option
	for _, rule := range s.RulesFor(productType, componentType) {
		if !catalog.MatchesAll(rule.Filters, ctx) {
			continue
		}
		options = append(options, Option{
			Code:      rule.OptionCode(),
			IsLabor:   rule.LaborCodeCode != "",
			IsDefault: rule.IsDefault,
		})
	}
	if len(options) == 0 {
		return nil, catalog.ConfigErr(productType+"/"+componentType, catalog.ErrNoEligibleOption,
			"no rule matches the supplied attributes")
	}
	return options, nil
}

// DefaultOption returns the pre-selected option: the flagged default when one
// matched, otherwise the first by display order. Two defaults matching the
// same context is prevented by catalog validation, not re-checked here.
func DefaultOption(options []Option) Option {
	for _, opt := range options {
		if opt.IsDefault {
			return opt
		}
	}
	return options[0]
}
