package bom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-ops/palisade/internal/catalog"
)

func TestFinalizeQuantity(t *testing.T) {
	tests := []struct {
		name  string
		raw   float64
		level catalog.RoundingLevel
		want  float64
	}{
		{"sku rounds up", 13.01, catalog.RoundSKU, 14},
		{"sku exact stays", 13, catalog.RoundSKU, 13},
		{"project keeps raw", 4.662, catalog.RoundProject, 4.662},
		{"none keeps raw", 1.337, catalog.RoundNone, 1.337},
		{"negative clamps to zero", -2.5, catalog.RoundSKU, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, finalizeQuantity(tt.raw, tt.level))
		})
	}
}

func concreteLine(raw float64) ComponentLine {
	return ComponentLine{
		ComponentCode: "concrete",
		MaterialCode:  "CONC-60LB",
		Unit:          "bag",
		Quantity:      raw,
		RawQuantity:   raw,
		Rounding:      string(catalog.RoundProject),
	}
}

func TestProjectAggregatorRoundsOnce(t *testing.T) {
	agg := NewProjectAggregator()
	// Three runs at 1.665 bags each: per-run rounding would buy 6 bags, the
	// project as a whole needs ceil(4.995) = 5.
	for i := 0; i < 3; i++ {
		agg.Add(CalculationResult{Components: []ComponentLine{concreteLine(1.665)}})
	}

	totals := agg.Totals()
	require.Len(t, totals, 1)
	assert.Equal(t, float64(5), totals[0].Quantity)
	assert.InDelta(t, 4.995, totals[0].RawQuantity, 1e-9)
}

func TestProjectAggregatorIgnoresSKULines(t *testing.T) {
	agg := NewProjectAggregator()
	agg.Add(CalculationResult{Components: []ComponentLine{
		{ComponentCode: "post", MaterialCode: "POST-PT-4x4", Quantity: 14, RawQuantity: 13.5, Rounding: string(catalog.RoundSKU)},
		concreteLine(2.1),
	}})

	totals := agg.Totals()
	require.Len(t, totals, 1)
	assert.Equal(t, "concrete", totals[0].ComponentCode)
}

func TestProjectAggregatorGroupsByMaterial(t *testing.T) {
	agg := NewProjectAggregator()
	a := concreteLine(1.2)
	b := concreteLine(1.2)
	b.MaterialCode = "CONC-80LB"
	agg.Add(CalculationResult{Components: []ComponentLine{a}})
	agg.Add(CalculationResult{Components: []ComponentLine{b}})

	totals := agg.Totals()
	require.Len(t, totals, 2, "different materials never merge")
	assert.Equal(t, "CONC-60LB", totals[0].MaterialCode)
	assert.Equal(t, "CONC-80LB", totals[1].MaterialCode)
}

func TestProjectAggregatorEmpty(t *testing.T) {
	assert.Empty(t, NewProjectAggregator().Totals())
}
