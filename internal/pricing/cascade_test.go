package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-ops/palisade/internal/catalog"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// pricingSnapshot wires a full scope chain: community "oakridge" under client
// "meridian" under business unit "south". The community sheet prices FP-100
// by margin and FP-200 fixed; the client and unit sheets exist for fallback
// and partial-scope tests.
func pricingSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		RateSheets: map[string]catalog.RateSheet{
			"rs-community": {
				ID: "rs-community", Name: "Oakridge 2026", Type: catalog.SheetHybrid,
				DefaultMethod:        catalog.MethodMarkup,
				DefaultMarkupPercent: decPtr("15"),
				Items: map[string]catalog.RateSheetItem{
					"FP-100": {SKU: "FP-100", Method: catalog.MethodMargin, MarginPercent: decPtr("20")},
					"FP-200": {SKU: "FP-200", Method: catalog.MethodFixed, FixedPrice: decPtr("125.00")},
					"FP-250": {SKU: "FP-250", Method: catalog.MethodFixed},
					"FP-300": {SKU: "FP-300", Method: catalog.MethodCostPlus, FixedAmount: decPtr("7.50")},
					"FP-400": {SKU: "FP-400", Method: catalog.MethodMargin, MarginPercent: decPtr("100"), FixedPrice: decPtr("99.99")},
					"FP-500": {SKU: "FP-500", Method: catalog.MethodMargin, MarginPercent: decPtr("110")},
				},
			},
			"rs-client": {
				ID: "rs-client", Name: "Meridian Standard", Type: catalog.SheetFormula,
				DefaultMethod:        catalog.MethodMargin,
				DefaultMarginPercent: decPtr("25"),
				Items:                map[string]catalog.RateSheetItem{},
			},
			"rs-unit": {
				ID: "rs-unit", Name: "South Region", Type: catalog.SheetFormula,
				DefaultMethod:        catalog.MethodMarkup,
				DefaultMarkupPercent: decPtr("10"),
				Items:                map[string]catalog.RateSheetItem{},
			},
		},
		Communities: map[string]catalog.Community{
			"oakridge": {
				ID: "oakridge", ClientID: "meridian", RateSheetID: "rs-community",
				PriceOverrides: map[string]decimal.Decimal{"FP-900": dec("42.00")},
			},
			"no-sheet": {ID: "no-sheet", ClientID: "meridian"},
			"orphan":   {ID: "orphan", ClientID: "missing"},
		},
		Clients: map[string]catalog.Client{
			"meridian": {ID: "meridian", BusinessUnitID: "south", RateSheetID: "rs-client"},
			"bare":     {ID: "bare", BusinessUnitID: "south"},
		},
		BusinessUnits: map[string]catalog.BusinessUnit{
			"south": {ID: "south", RateSheetID: "rs-unit"},
			"west":  {ID: "west"},
		},
	}
}

func TestResolvePriceMargin(t *testing.T) {
	// base 40, margin 20%: 40 / (1 - 0.20) = 50.00
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-100", BaseCost: dec("40"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("50.00")), "got %s", result.Price)
	assert.Equal(t, catalog.MethodMargin, result.Method)
	assert.Equal(t, SourceCommunity, result.Source)
}

func TestResolvePriceFixed(t *testing.T) {
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-200", BaseCost: dec("40"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("125.00")))
	assert.Equal(t, catalog.MethodFixed, result.Method)
}

func TestResolvePriceFixedWithoutStoredPriceUsesBaseCost(t *testing.T) {
	// FP-250 is configured fixed but carries no stored price; the base cost
	// passes through instead of failing the resolution.
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-250", BaseCost: dec("40"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("40.00")), "got %s", result.Price)
	assert.Equal(t, catalog.MethodCostOnly, result.Method)
	assert.Equal(t, SourceNone, result.Source)
}

func TestResolvePriceCostPlus(t *testing.T) {
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-300", BaseCost: dec("40"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("47.50")))
}

func TestResolvePriceCommunityOverrideWins(t *testing.T) {
	// FP-900 has an explicit community price; no sheet math applies.
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-900", BaseCost: dec("10"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("42.00")))
	assert.Equal(t, SourceCommunityOverride, result.Source)
	assert.Equal(t, catalog.MethodFixed, result.Method)
}

func TestResolvePriceSheetDefaultForUnknownSKU(t *testing.T) {
	// Hybrid sheet, no item for FP-777: default markup 15% applies.
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-777", BaseCost: dec("100"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("115.00")))
	assert.Equal(t, catalog.MethodMarkup, result.Method)
	assert.Equal(t, SourceCommunity, result.Source)
}

func TestResolvePriceFallsBackToClientSheet(t *testing.T) {
	// Community without a sheet: the client's formula sheet prices it.
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-100", BaseCost: dec("75"), CommunityID: "no-sheet",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("100.00")), "75 / (1 - 0.25), got %s", result.Price)
	assert.Equal(t, SourceClient, result.Source)
}

func TestResolvePriceClientScopeOnly(t *testing.T) {
	// No community supplied: the walk starts at the client's sheet.
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-100", BaseCost: dec("75"), ClientID: "meridian",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("100.00")), "75 / (1 - 0.25), got %s", result.Price)
	assert.Equal(t, SourceClient, result.Source)
}

func TestResolvePriceBusinessUnitScopeOnly(t *testing.T) {
	// Only the business unit is known: its sheet default prices the SKU.
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-100", BaseCost: dec("50"), BusinessUnitID: "south",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("55.00")), "got %s", result.Price)
	assert.Equal(t, SourceBusinessUnit, result.Source)

	// A unit without a sheet still resolves, at cost.
	result, err = ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-100", BaseCost: dec("50"), BusinessUnitID: "west",
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.MethodCostOnly, result.Method)
}

func TestResolvePriceCostOnlyWhenNothingInScope(t *testing.T) {
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-100", BaseCost: dec("33.33"),
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("33.33")))
	assert.Equal(t, catalog.MethodCostOnly, result.Method)
	assert.Equal(t, SourceNone, result.Source)
}

func TestResolvePriceUnknownCommunityIsCostOnly(t *testing.T) {
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-100", BaseCost: dec("20"), CommunityID: "nowhere",
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.MethodCostOnly, result.Method)
}

func TestResolvePriceDegenerateMarginUsesFixedFallback(t *testing.T) {
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-400", BaseCost: dec("40"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("99.99")))
	assert.Equal(t, catalog.MethodFixed, result.Method)
}

func TestResolvePriceDegenerateMarginWithoutFallbackIsCostOnly(t *testing.T) {
	result, err := ResolvePrice(pricingSnapshot(), Request{
		SKU: "FP-500", BaseCost: dec("40"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("40.00")))
	assert.Equal(t, catalog.MethodCostOnly, result.Method)
}

func TestResolvePriceRoundsToCents(t *testing.T) {
	// 10 / (1 - 0.333) = 14.99250... -> 14.99
	snap := pricingSnapshot()
	sheet := snap.RateSheets["rs-community"]
	sheet.Items["FP-600"] = catalog.RateSheetItem{
		SKU: "FP-600", Method: catalog.MethodMargin, MarginPercent: decPtr("33.3"),
	}

	result, err := ResolvePrice(snap, Request{
		SKU: "FP-600", BaseCost: dec("10"), CommunityID: "oakridge",
	})
	require.NoError(t, err)
	assert.True(t, result.Price.Equal(dec("14.99")), "got %s", result.Price)
}

func TestResolvePriceDeterministic(t *testing.T) {
	req := Request{SKU: "FP-100", BaseCost: dec("40"), CommunityID: "oakridge"}
	first, err := ResolvePrice(pricingSnapshot(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ResolvePrice(pricingSnapshot(), req)
		require.NoError(t, err)
		assert.True(t, first.Price.Equal(again.Price))
		assert.Equal(t, first.Source, again.Source)
	}
}
