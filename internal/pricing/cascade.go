package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/palisade-ops/palisade/internal/catalog"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ResolvePrice walks the pricing cascade for one SKU:
//
//	community per-SKU override
//	-> effective rate sheet (community, then client, then business unit)
//	-> rate-sheet item method
//	-> sheet-level default (sheet type formula or hybrid)
//	-> cost_only
//
// Every scope is independently optional; the walk starts at the finest scope
// the request supplies. The first level that yields a price wins and is
// recorded as the result source. cost_only is a valid terminal outcome,
// never an error; the base cost passes through untouched.
func ResolvePrice(s *catalog.Snapshot, req Request) (Result, error) {
	if community, ok := s.Communities[req.CommunityID]; ok {
		if override, ok := community.PriceOverrides[req.SKU]; ok {
			return Result{
				SKU:    req.SKU,
				Price:  override.Round(2),
				Method: catalog.MethodFixed,
				Source: SourceCommunityOverride,
			}, nil
		}
	}

	sheet, source, ok := effectiveRateSheet(s, req)
	if !ok {
		return costOnly(req), nil
	}

	if item, ok := sheet.Items[req.SKU]; ok {
		return applyItem(sheet, item, source, req)
	}
	if sheet.Type == catalog.SheetFormula || sheet.Type == catalog.SheetHybrid {
		return applyDefault(sheet, source, req)
	}
	return costOnly(req), nil
}

// costOnly is the terminal fallback: nothing in scope priced the SKU, the
// base cost passes through untouched.
func costOnly(req Request) Result {
	return Result{
		SKU:    req.SKU,
		Price:  req.BaseCost.Round(2),
		Method: catalog.MethodCostOnly,
		Source: SourceNone,
	}
}

// effectiveRateSheet picks the nearest assigned sheet, starting at the finest
// scope the request names. A community implies its client, a client implies
// its business unit; an explicit client or unit ID is the entry point when no
// community is in scope.
func effectiveRateSheet(s *catalog.Snapshot, req Request) (catalog.RateSheet, Source, bool) {
	clientID := req.ClientID
	unitID := req.BusinessUnitID

	if community, ok := s.Communities[req.CommunityID]; ok {
		if sheet, ok := s.RateSheets[community.RateSheetID]; ok && community.RateSheetID != "" {
			return sheet, SourceCommunity, true
		}
		clientID = community.ClientID
	}
	if client, ok := s.Clients[clientID]; ok {
		if sheet, ok := s.RateSheets[client.RateSheetID]; ok && client.RateSheetID != "" {
			return sheet, SourceClient, true
		}
		unitID = client.BusinessUnitID
	}
	if unit, ok := s.BusinessUnits[unitID]; ok {
		if sheet, ok := s.RateSheets[unit.RateSheetID]; ok && unit.RateSheetID != "" {
			return sheet, SourceBusinessUnit, true
		}
	}
	return catalog.RateSheet{}, SourceNone, false
}

func applyItem(sheet catalog.RateSheet, item catalog.RateSheetItem, source Source, req Request) (Result, error) {
	result := Result{
		SKU:           req.SKU,
		Method:        item.Method,
		Source:        source,
		RateSheetID:   sheet.ID,
		LaborPrice:    item.LaborPrice,
		MaterialPrice: item.MaterialPrice,
	}

	switch item.Method {
	case catalog.MethodFixed:
		if item.FixedPrice == nil {
			// A null stored price is not an error; the base cost passes through.
			result.Method = catalog.MethodCostOnly
			result.Source = SourceNone
			result.RateSheetID = ""
			result.Price = req.BaseCost.Round(2)
			return result, nil
		}
		result.Price = item.FixedPrice.Round(2)
		return result, nil

	case catalog.MethodMarkup:
		percent := item.MarkupPercent
		if percent == nil {
			percent = sheet.DefaultMarkupPercent
		}
		if percent == nil {
			return Result{}, catalog.ConfigErr(sheet.ID+"/"+req.SKU, catalog.ErrIncompletePricing,
				"markup method without a markup percent")
		}
		result.Price = markup(req.BaseCost, *percent)
		return result, nil

	case catalog.MethodMargin:
		percent := item.MarginPercent
		if percent == nil {
			percent = sheet.DefaultMarginPercent
		}
		if percent == nil {
			return Result{}, catalog.ConfigErr(sheet.ID+"/"+req.SKU, catalog.ErrIncompletePricing,
				"margin method without a margin percent")
		}
		if percent.GreaterThanOrEqual(hundred) {
			// Degenerate margin. Catalog validation flags it; at resolution the
			// item's fixed price stands in when present, otherwise cost only.
			if item.FixedPrice != nil {
				result.Method = catalog.MethodFixed
				result.Price = item.FixedPrice.Round(2)
				return result, nil
			}
			result.Method = catalog.MethodCostOnly
			result.Source = SourceNone
			result.RateSheetID = ""
			result.Price = req.BaseCost.Round(2)
			return result, nil
		}
		result.Price = margin(req.BaseCost, *percent)
		return result, nil

	case catalog.MethodCostPlus:
		if item.FixedAmount == nil {
			return Result{}, catalog.ConfigErr(sheet.ID+"/"+req.SKU, catalog.ErrIncompletePricing,
				"cost_plus method without a fixed amount")
		}
		result.Price = req.BaseCost.Add(*item.FixedAmount).Round(2)
		return result, nil

	default:
		return Result{}, catalog.ConfigErr(sheet.ID+"/"+req.SKU, catalog.ErrIncompletePricing,
			"unknown pricing method %q", item.Method)
	}
}

// applyDefault prices a SKU with no explicit item using the sheet's default
// method and percentages.
func applyDefault(sheet catalog.RateSheet, source Source, req Request) (Result, error) {
	result := Result{
		SKU:         req.SKU,
		Method:      sheet.DefaultMethod,
		Source:      source,
		RateSheetID: sheet.ID,
	}

	switch sheet.DefaultMethod {
	case catalog.MethodMarkup:
		if sheet.DefaultMarkupPercent == nil {
			return Result{}, catalog.ConfigErr(sheet.ID, catalog.ErrIncompletePricing,
				"default markup method without a percent")
		}
		result.Price = markup(req.BaseCost, *sheet.DefaultMarkupPercent)
		return result, nil

	case catalog.MethodMargin:
		if sheet.DefaultMarginPercent == nil {
			return Result{}, catalog.ConfigErr(sheet.ID, catalog.ErrIncompletePricing,
				"default margin method without a percent")
		}
		if sheet.DefaultMarginPercent.GreaterThanOrEqual(hundred) {
			result.Method = catalog.MethodCostOnly
			result.Source = SourceNone
			result.RateSheetID = ""
			result.Price = req.BaseCost.Round(2)
			return result, nil
		}
		result.Price = margin(req.BaseCost, *sheet.DefaultMarginPercent)
		return result, nil

	default:
		// A fixed default cannot price an unknown SKU; fall through to cost.
		result.Method = catalog.MethodCostOnly
		result.Source = SourceNone
		result.RateSheetID = ""
		result.Price = req.BaseCost.Round(2)
		return result, nil
	}
}

// markup computes cost * (1 + p/100) rounded to cents.
func markup(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(one.Add(percent.Div(hundred))).Round(2)
}

// margin computes cost / (1 - p/100) rounded to cents. Callers guarantee
// percent < 100.
func margin(base, percent decimal.Decimal) decimal.Decimal {
	return base.Div(one.Sub(percent.Div(hundred))).Round(2)
}
