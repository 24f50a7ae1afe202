package bom

import (
	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/formula"
)

// Engine computes bills of materials against read-only catalog snapshots.
// It holds no mutable state; concurrent calculations are fully independent.
type Engine struct{}

// NewEngine constructs an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute runs one calculation pass: for each component the product type
// requires, resolve the applicable formula, evaluate it against the variable
// context, finalize rounding, and attach the concrete material or labor code.
// The pass is pure and synchronous; every input lives in the snapshot and the
// request.
func (e *Engine) Compute(s *catalog.Snapshot, req CalculationRequest) (*CalculationResult, error) {
	pt, ok := s.ProductTypes[req.ProductType]
	if !ok || !pt.IsActive {
		return nil, catalog.ConfigErr(req.ProductType, catalog.ErrUnknownReference,
			"unknown product type")
	}

	var style catalog.ProductStyle
	if req.Style != "" {
		style, ok = s.Style(req.ProductType, req.Style)
		if !ok {
			return nil, catalog.ConfigErr(req.ProductType+"/"+req.Style,
				catalog.ErrUnknownReference, "unknown style")
		}
	}

	ctx := buildContext(pt, style, req.Inputs)
	filterCtx := buildFilterContext(req.Inputs)

	// Dotted references resolve against the material already selected for a
	// component, so eligibility runs before each component's formula.
	attrsByComponent := make(map[string]map[string]float64)
	ctx.WithAttributes(func(component, attribute string) (float64, bool) {
		attrs, ok := attrsByComponent[component]
		if !ok {
			return 0, false
		}
		v, ok := attrs[attribute]
		return v, ok
	})

	result := &CalculationResult{ProductType: req.ProductType, Style: req.Style}

	for _, component := range s.ComponentsFor(req.ProductType) {
		template, err := ResolveTemplate(s, req.ProductType, req.Style, component.Code)
		if err != nil {
			return nil, err
		}

		options, err := EligibleOptions(s, req.ProductType, component.Code, filterCtx)
		if err != nil {
			return nil, err
		}
		selected := DefaultOption(options)
		if !selected.IsLabor {
			if material, ok := s.Materials[selected.Code]; ok {
				attrsByComponent[component.Code] = material.Attributes
			}
		}

		expr, err := formula.Parse(template.Expression)
		if err != nil {
			return nil, err
		}
		raw, err := expr.EvalNumber(ctx)
		if err != nil {
			return nil, err
		}

		quantity := finalizeQuantity(raw, template.RoundingLevel)
		ctx.SetComputed(component.Code, quantity)

		// Zero-quantity components (a gate kit on a run with no gates) stay
		// out of the BOM but remain referenceable as computed variables.
		if quantity <= 0 && raw <= 0 {
			continue
		}

		if component.IsLabor {
			result.LaborLines = append(result.LaborLines, LaborLine{
				ComponentCode: component.Code,
				LaborCode:     selected.Code,
				Quantity:      quantity,
				Unit:          component.Unit,
				RawQuantity:   raw,
				Rounding:      string(template.RoundingLevel),
			})
		} else {
			result.Components = append(result.Components, ComponentLine{
				ComponentCode: component.Code,
				MaterialCode:  selected.Code,
				Quantity:      quantity,
				Unit:          component.Unit,
				RawQuantity:   raw,
				Rounding:      string(template.RoundingLevel),
			})
		}
	}

	return result, nil
}

// buildContext assembles the evaluator's variable environment: the common
// inputs, product defaults, request extras, and the style's formula
// adjustment constants. Style adjustments are bound last so a style override
// (alternate spacing, a multiplier) wins over the generic value.
func buildContext(pt catalog.ProductType, style catalog.ProductStyle, in Inputs) *formula.Context {
	ctx := formula.NewContext()
	ctx.SetInput("height", in.Height)
	ctx.SetInput("run_length", in.RunLength)
	ctx.SetInput("rail_count", in.RailCount)
	ctx.SetInput("gate_count", in.GateCount)

	spacing := pt.DefaultSpacing
	if in.PostSpacing != nil && *in.PostSpacing > 0 {
		spacing = *in.PostSpacing
	}
	ctx.SetInput("post_spacing", spacing)

	for name, v := range in.Extra {
		ctx.SetInput(name, v)
	}
	for name, v := range style.FormulaAdjustments {
		ctx.SetInput(name, v)
	}
	return ctx
}

// buildFilterContext exposes the request's attributes to eligibility
// predicates: strings as-is, the common numeric inputs by name.
func buildFilterContext(in Inputs) catalog.FilterContext {
	numbers := map[string]float64{
		"height":     in.Height,
		"run_length": in.RunLength,
		"rail_count": in.RailCount,
		"gate_count": in.GateCount,
	}
	for name, v := range in.Extra {
		numbers[name] = v
	}
	strings := make(map[string]string, len(in.Attributes))
	for name, v := range in.Attributes {
		strings[name] = v
	}
	return catalog.FilterContext{Strings: strings, Numbers: numbers}
}
