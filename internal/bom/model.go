package bom

// Inputs are the author-supplied variables for one fence run. Extra carries
// product-specific numeric inputs beyond the common set; Attributes carries
// string attributes consumed by eligibility filters (postType, finish, ...).
type Inputs struct {
	Height      float64            `json:"height"`
	RunLength   float64            `json:"run_length"`
	RailCount   float64            `json:"rail_count"`
	GateCount   float64            `json:"gate_count"`
	PostSpacing *float64           `json:"post_spacing,omitempty"`
	Extra       map[string]float64 `json:"extra,omitempty"`
	Attributes  map[string]string  `json:"attributes,omitempty"`
}

// CalculationRequest describes one run to compute.
type CalculationRequest struct {
	ProductType string `json:"product_type"`
	Style       string `json:"style"`
	Inputs      Inputs `json:"inputs"`
}

// ComponentLine is one physical component in the computed BOM.
type ComponentLine struct {
	ComponentCode string  `json:"component_code"`
	MaterialCode  string  `json:"material_code"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	// RawQuantity is the pre-rounding value; for project-level components it
	// feeds the cross-run aggregation pass.
	RawQuantity float64 `json:"raw_quantity"`
	Rounding    string  `json:"rounding"`
}

// LaborLine is one labor entry in the computed BOM.
type LaborLine struct {
	ComponentCode string  `json:"component_code"`
	LaborCode     string  `json:"labor_code"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	RawQuantity   float64 `json:"raw_quantity"`
	Rounding      string  `json:"rounding"`
}

// CalculationResult is the computed BOM for one run.
type CalculationResult struct {
	ProductType string          `json:"product_type"`
	Style       string          `json:"style"`
	Components  []ComponentLine `json:"components"`
	LaborLines  []LaborLine     `json:"labor_lines"`
}

// ProjectTotal is one project-level component total, rounded once across
// every run in the project.
type ProjectTotal struct {
	ComponentCode string  `json:"component_code"`
	MaterialCode  string  `json:"material_code"`
	Quantity      float64 `json:"quantity"`
	RawQuantity   float64 `json:"raw_quantity"`
	Unit          string  `json:"unit"`
}

// ProjectResult is the computed BOM for a multi-run project: per-run results
// with sku-level rounding applied, plus the project-rounded consumable totals.
type ProjectResult struct {
	Runs          []CalculationResult `json:"runs"`
	ProjectTotals []ProjectTotal      `json:"project_totals"`
}
