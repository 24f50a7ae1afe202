package catalog

import "fmt"

// PredicateKind tags an attribute predicate. New kinds are additive: the
// matcher switches on the tag, call sites never compare attributes by hand.
type PredicateKind string

const (
	PredicateEquals PredicateKind = "equals"
	PredicateOneOf  PredicateKind = "one_of"
	PredicateRange  PredicateKind = "range"
)

// Predicate is one attribute condition on an eligibility rule, e.g.
// postType = STEEL, or height within [6, 8].
type Predicate struct {
	Attribute string        `json:"attribute"`
	Kind      PredicateKind `json:"kind"`
	Equals    string        `json:"equals,omitempty"`
	OneOf     []string      `json:"one_of,omitempty"`
	Min       *float64      `json:"min,omitempty"`
	Max       *float64      `json:"max,omitempty"`
}

// FilterContext carries the attribute values predicates match against.
// String attributes (postType) and numeric attributes (height) live in
// separate maps; a predicate only ever reads one of them.
type FilterContext struct {
	Strings map[string]string
	Numbers map[string]float64
}

// Matches evaluates the predicate against ctx. An attribute absent from the
// context never matches: eligibility narrows, it does not guess.
func (p Predicate) Matches(ctx FilterContext) bool {
	switch p.Kind {
	case PredicateEquals:
		v, ok := ctx.Strings[p.Attribute]
		return ok && v == p.Equals
	case PredicateOneOf:
		v, ok := ctx.Strings[p.Attribute]
		if !ok {
			return false
		}
		for _, candidate := range p.OneOf {
			if v == candidate {
				return true
			}
		}
		return false
	case PredicateRange:
		v, ok := ctx.Numbers[p.Attribute]
		if !ok {
			return false
		}
		if p.Min != nil && v < *p.Min {
			return false
		}
		if p.Max != nil && v > *p.Max {
			return false
		}
		return true
	default:
		return false
	}
}

// Validate reports malformed predicate configuration.
func (p Predicate) Validate() error {
	if p.Attribute == "" {
		return fmt.Errorf("predicate: attribute required")
	}
	switch p.Kind {
	case PredicateEquals:
		if p.Equals == "" {
			return fmt.Errorf("predicate %s: equals value required", p.Attribute)
		}
	case PredicateOneOf:
		if len(p.OneOf) == 0 {
			return fmt.Errorf("predicate %s: one_of values required", p.Attribute)
		}
	case PredicateRange:
		if p.Min == nil && p.Max == nil {
			return fmt.Errorf("predicate %s: range needs min or max", p.Attribute)
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return fmt.Errorf("predicate %s: min above max", p.Attribute)
		}
	default:
		return fmt.Errorf("predicate %s: unknown kind %q", p.Attribute, p.Kind)
	}
	return nil
}

// MatchesAll reports whether every predicate matches the context.
func MatchesAll(preds []Predicate, ctx FilterContext) bool {
	for _, p := range preds {
		if !p.Matches(ctx) {
			return false
		}
	}
	return true
}
