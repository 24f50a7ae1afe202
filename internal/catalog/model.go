package catalog

import (
	"github.com/shopspring/decimal"
)

// ProductType is a fence family (wood-vertical, wood-horizontal, iron, ...).
// Reference data, edited by administrators, read by every calculation.
type ProductType struct {
	Code           string  `json:"code" db:"code"`
	Name           string  `json:"name" db:"name"`
	DefaultSpacing float64 `json:"default_spacing" db:"default_spacing"`
	IsActive       bool    `json:"is_active" db:"is_active"`
}

// ProductStyle is a variant of a ProductType. FormulaAdjustments carries the
// override constants style-specific formulas consume (alternate spacing, a
// picket multiplier, ...); they are merged into the input namespace when a
// calculation runs against the style.
type ProductStyle struct {
	Code               string             `json:"code" db:"code"`
	ProductTypeCode    string             `json:"product_type_code" db:"product_type_code"`
	Name               string             `json:"name" db:"name"`
	FormulaAdjustments map[string]float64 `json:"formula_adjustments" db:"formula_adjustments"`
	IsActive           bool               `json:"is_active" db:"is_active"`
}

// ComponentType is a physical or labor unit kind shared across product types.
// Sequence fixes evaluation order so computed quantities referenced by later
// formulas are always available, and results stay deterministic.
type ComponentType struct {
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	Unit     string `json:"unit" db:"unit"`
	IsLabor  bool   `json:"is_labor" db:"is_labor"`
	Sequence int    `json:"sequence" db:"sequence"`
}

// RoundingLevel selects how a component's raw quantity is finalized.
type RoundingLevel string

const (
	// RoundSKU rounds up per line immediately (discrete countable units).
	RoundSKU RoundingLevel = "sku"
	// RoundProject accumulates raw quantities across the run and rounds once
	// at the end (consumables sold in fixed-size packs).
	RoundProject RoundingLevel = "project"
	// RoundNone keeps full precision (intermediate helper values).
	RoundNone RoundingLevel = "none"
)

// Valid reports whether the level is one of the three policies.
func (r RoundingLevel) Valid() bool {
	return r == RoundSKU || r == RoundProject || r == RoundNone
}

// FormulaTemplate is the central rule record. StyleCode empty means wildcard:
// the fallback for every style of the product type. Style-specific templates
// are seeded with priority above zero, wildcards with zero.
type FormulaTemplate struct {
	ID                int64         `json:"id" db:"id"`
	ProductTypeCode   string        `json:"product_type_code" db:"product_type_code"`
	StyleCode         string        `json:"style_code" db:"style_code"`
	ComponentTypeCode string        `json:"component_type_code" db:"component_type_code"`
	Expression        string        `json:"expression" db:"expression"`
	RoundingLevel     RoundingLevel `json:"rounding_level" db:"rounding_level"`
	Priority          int           `json:"priority" db:"priority"`
	IsActive          bool          `json:"is_active" db:"is_active"`
}

// IsWildcard reports whether the template applies to every style.
func (t FormulaTemplate) IsWildcard() bool {
	return t.StyleCode == ""
}

// Material is a purchasable physical item. Attributes feeds the evaluator's
// dotted references ([picket.width_inches]).
type Material struct {
	Code       string             `json:"code" db:"code"`
	Name       string             `json:"name" db:"name"`
	Unit       string             `json:"unit" db:"unit"`
	UnitCost   decimal.Decimal    `json:"unit_cost" db:"unit_cost"`
	Attributes map[string]float64 `json:"attributes" db:"attributes"`
	IsActive   bool               `json:"is_active" db:"is_active"`
}

// LaborCode is a billable unit of installation work.
type LaborCode struct {
	Code     string          `json:"code" db:"code"`
	Name     string          `json:"name" db:"name"`
	Unit     string          `json:"unit" db:"unit"`
	UnitCost decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	IsActive bool            `json:"is_active" db:"is_active"`
}

// EligibilityRule maps a (productType, componentType) pair to one candidate
// material or labor code, optionally guarded by attribute predicates.
type EligibilityRule struct {
	ID                int64       `json:"id" db:"id"`
	ProductTypeCode   string      `json:"product_type_code" db:"product_type_code"`
	ComponentTypeCode string      `json:"component_type_code" db:"component_type_code"`
	MaterialCode      string      `json:"material_code,omitempty" db:"material_code"`
	LaborCodeCode     string      `json:"labor_code,omitempty" db:"labor_code"`
	Filters           []Predicate `json:"filters,omitempty" db:"filters"`
	IsDefault         bool        `json:"is_default" db:"is_default"`
	DisplayOrder      int         `json:"display_order" db:"display_order"`
	IsActive          bool        `json:"is_active" db:"is_active"`
}

// OptionCode returns the material or labor code the rule selects.
func (r EligibilityRule) OptionCode() string {
	if r.LaborCodeCode != "" {
		return r.LaborCodeCode
	}
	return r.MaterialCode
}

// PricingMethod is how a rate-sheet entry turns base cost into sell price.
type PricingMethod string

const (
	MethodFixed    PricingMethod = "fixed"
	MethodMarkup   PricingMethod = "markup"
	MethodMargin   PricingMethod = "margin"
	MethodCostPlus PricingMethod = "cost_plus"
	// MethodCostOnly tags the terminal fallback: no rule matched, the base
	// cost is returned untouched. A valid outcome, not an error.
	MethodCostOnly PricingMethod = "cost_only"
)

// RateSheetType controls whether sheet-level defaults apply when a SKU has no
// explicit item.
type RateSheetType string

const (
	SheetFixed   RateSheetType = "fixed"
	SheetFormula RateSheetType = "formula"
	SheetHybrid  RateSheetType = "hybrid"
)

// RateSheetItem prices one SKU within a rate sheet.
type RateSheetItem struct {
	SKU           string           `json:"sku" db:"sku"`
	Method        PricingMethod    `json:"method" db:"method"`
	FixedPrice    *decimal.Decimal `json:"fixed_price,omitempty" db:"fixed_price"`
	MarkupPercent *decimal.Decimal `json:"markup_percent,omitempty" db:"markup_percent"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty" db:"margin_percent"`
	FixedAmount   *decimal.Decimal `json:"fixed_amount,omitempty" db:"fixed_amount"`
	LaborPrice    *decimal.Decimal `json:"labor_price,omitempty" db:"labor_price"`
	MaterialPrice *decimal.Decimal `json:"material_price,omitempty" db:"material_price"`
}

// RateSheet defines how much each SKU costs. Sheet-level defaults back items
// that omit their own percentages, and price SKUs with no item at all when
// the sheet type is formula or hybrid.
type RateSheet struct {
	ID                   string                   `json:"id" db:"id"`
	Name                 string                   `json:"name" db:"name"`
	Type                 RateSheetType            `json:"type" db:"type"`
	DefaultMethod        PricingMethod            `json:"default_method" db:"default_method"`
	DefaultMarkupPercent *decimal.Decimal         `json:"default_markup_percent,omitempty" db:"default_markup_percent"`
	DefaultMarginPercent *decimal.Decimal         `json:"default_margin_percent,omitempty" db:"default_margin_percent"`
	Items                map[string]RateSheetItem `json:"items" db:"-"`
}

// PriceBook defines which SKUs a client may buy. Scope only; pricing lives in
// rate sheets.
type PriceBook struct {
	ID   string          `json:"id" db:"id"`
	Name string          `json:"name" db:"name"`
	SKUs map[string]bool `json:"skus" db:"-"`
}

// Community is the finest-grained pricing scope. PriceOverrides are explicit
// per-SKU prices that win over any rate sheet.
type Community struct {
	ID             string                     `json:"id" db:"id"`
	Name           string                     `json:"name" db:"name"`
	ClientID       string                     `json:"client_id" db:"client_id"`
	RateSheetID    string                     `json:"rate_sheet_id,omitempty" db:"rate_sheet_id"`
	PriceBookID    string                     `json:"price_book_id,omitempty" db:"price_book_id"`
	PriceOverrides map[string]decimal.Decimal `json:"price_overrides" db:"-"`
}

// Client is the mid-level pricing scope.
type Client struct {
	ID             string `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	BusinessUnitID string `json:"business_unit_id" db:"business_unit_id"`
	RateSheetID    string `json:"rate_sheet_id,omitempty" db:"rate_sheet_id"`
	PriceBookID    string `json:"price_book_id,omitempty" db:"price_book_id"`
}

// BusinessUnit is the top-level organizational scope above client and
// community.
type BusinessUnit struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	RateSheetID string `json:"rate_sheet_id,omitempty" db:"rate_sheet_id"`
	PriceBookID string `json:"price_book_id,omitempty" db:"price_book_id"`
}
