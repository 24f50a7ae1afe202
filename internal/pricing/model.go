package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/palisade-ops/palisade/internal/catalog"
)

// Source records which level of the scope hierarchy produced the price.
type Source string

const (
	SourceCommunityOverride Source = "community_override"
	SourceCommunity         Source = "community"
	SourceClient            Source = "client"
	SourceBusinessUnit      Source = "business_unit"
	// SourceNone tags the cost_only fallback: nothing in scope priced the SKU.
	SourceNone Source = "none"
)

// Request identifies one SKU to price. Each scope ID is independently
// optional; the cascade starts at the finest one supplied. BaseCost is the
// caller-computed cost the methods operate on.
type Request struct {
	SKU            string
	BaseCost       decimal.Decimal
	CommunityID    string
	ClientID       string
	BusinessUnitID string
}

// Result is one resolved price. LaborPrice and MaterialPrice are carried
// through when the rate-sheet item splits them out.
type Result struct {
	SKU           string                `json:"sku"`
	Price         decimal.Decimal       `json:"price"`
	Method        catalog.PricingMethod `json:"method"`
	Source        Source                `json:"source"`
	RateSheetID   string                `json:"rate_sheet_id,omitempty"`
	LaborPrice    *decimal.Decimal      `json:"labor_price,omitempty"`
	MaterialPrice *decimal.Decimal      `json:"material_price,omitempty"`
}
