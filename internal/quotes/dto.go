package quotes

import (
	"github.com/palisade-ops/palisade/internal/bom"
)

// CreateRequest is the JSON body for POST /quotes/estimates.
type CreateRequest struct {
	CommunityID string               `json:"community_id"`
	ProjectID   string               `json:"project_id"`
	Runs        []bom.ComputeRequest `json:"runs" validate:"required,min=1,dive"`
}
