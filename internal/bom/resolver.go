package bom

import (
	"github.com/palisade-ops/palisade/internal/catalog"
)

// ResolveTemplate selects the single applicable formula template for a
// component: among active templates whose style is the requested style or the
// wildcard, the highest priority wins. Style-specific templates are seeded
// above zero, wildcards at zero, so a style override always beats the generic
// formula. An exact priority tie is a configuration error and is reported,
// never resolved arbitrarily.
func ResolveTemplate(s *catalog.Snapshot, productType, style, componentType string) (catalog.FormulaTemplate, error) {
	subject := productType + "/" + componentType

	var best catalog.FormulaTemplate
	found := false
	tied := false
	for _, t := range s.TemplatesFor(productType, componentType) {
		if !t.IsWildcard() && t.StyleCode != style {
			continue
		}
		switch {
		case !found || t.Priority > best.Priority:
			best = t
			found = true
			tied = false
		case t.Priority == best.Priority:
			tied = true
		}
	}

	if !found {
		return catalog.FormulaTemplate{}, catalog.ConfigErr(subject, catalog.ErrNoFormula,
			"style %q", style)
	}
	if tied {
		return catalog.FormulaTemplate{}, catalog.ConfigErr(subject, catalog.ErrAmbiguousFormula,
			"two templates match style %q at priority %d", style, best.Priority)
	}
	return best, nil
}
