package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/pricing"
)

// EstimateLine is one priced BOM line: a resolved material or labor code, its
// quantity, and the sell price the cascade produced for it.
type EstimateLine struct {
	ComponentCode string                `json:"component_code" db:"component_code"`
	SKU           string                `json:"sku" db:"sku"`
	IsLabor       bool                  `json:"is_labor" db:"is_labor"`
	Quantity      float64               `json:"quantity" db:"quantity"`
	Unit          string                `json:"unit" db:"unit"`
	UnitCost      decimal.Decimal       `json:"unit_cost" db:"unit_cost"`
	UnitPrice     decimal.Decimal       `json:"unit_price" db:"unit_price"`
	LineTotal     decimal.Decimal       `json:"line_total" db:"line_total"`
	Method        catalog.PricingMethod `json:"method" db:"method"`
	Source        pricing.Source        `json:"source" db:"source"`
}

// Estimate is a priced, persisted quote snapshot. IDs are UUIDs so estimates
// created concurrently by different offices never collide.
type Estimate struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ProjectID        string          `json:"project_id,omitempty" db:"project_id"`
	CommunityID      string          `json:"community_id,omitempty" db:"community_id"`
	ProductType      string          `json:"product_type" db:"product_type"`
	Style            string          `json:"style" db:"style"`
	Lines            []EstimateLine  `json:"lines"`
	MaterialSubtotal decimal.Decimal `json:"material_subtotal" db:"material_subtotal"`
	LaborSubtotal    decimal.Decimal `json:"labor_subtotal" db:"labor_subtotal"`
	Total            decimal.Decimal `json:"total" db:"total"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}
