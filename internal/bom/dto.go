package bom

// ComputeRequest is the JSON body for a single-run computation.
type ComputeRequest struct {
	ProductType string `json:"product_type" validate:"required"`
	Style       string `json:"style"`
	Inputs      Inputs `json:"inputs" validate:"required"`
}

// ComputeProjectRequest is the JSON body for a multi-run project computation.
type ComputeProjectRequest struct {
	Runs []ComputeRequest `json:"runs" validate:"required,min=1,dive"`
}

func (r ComputeRequest) toCalculation() CalculationRequest {
	return CalculationRequest{
		ProductType: r.ProductType,
		Style:       r.Style,
		Inputs:      r.Inputs,
	}
}
