package pricing

import (
	"github.com/shopspring/decimal"
)

// ResolveRequest is the JSON body for POST /pricing/resolve. The scope IDs
// are each optional; callers supply whichever levels they know.
type ResolveRequest struct {
	CommunityID    string        `json:"community_id,omitempty"`
	ClientID       string        `json:"client_id,omitempty"`
	BusinessUnitID string        `json:"business_unit_id,omitempty"`
	Lines          []ResolveLine `json:"lines" validate:"required,min=1,dive"`
}

// ResolveLine names one SKU and its base cost.
type ResolveLine struct {
	SKU      string          `json:"sku" validate:"required"`
	BaseCost decimal.Decimal `json:"base_cost"`
}

// ResolveResponse carries the resolved prices in request order.
type ResolveResponse struct {
	Results []Result `json:"results"`
}
