package bom

import (
	"math"
	"sort"

	"github.com/palisade-ops/palisade/internal/catalog"
)

// finalizeQuantity applies the template's rounding policy to a raw evaluated
// quantity. sku-level components are discrete countable units and round up
// immediately; project-level components keep their raw value here and round
// once during aggregation; none keeps full precision.
func finalizeQuantity(raw float64, level catalog.RoundingLevel) float64 {
	if raw < 0 {
		raw = 0
	}
	if level == catalog.RoundSKU {
		return math.Ceil(raw)
	}
	return raw
}

// projectKey groups project-level accumulation by component and resolved
// material, so two runs consuming different concrete mixes do not merge.
type projectKey struct {
	component string
	material  string
}

// ProjectAggregator accumulates raw project-level quantities across runs and
// rounds each total once at the end. It is a second, independent pass:
// regrouping runs into projects can never change sku-level outputs, because
// sku components never flow through here.
type ProjectAggregator struct {
	totals map[projectKey]*ProjectTotal
}

// NewProjectAggregator returns an empty aggregator.
func NewProjectAggregator() *ProjectAggregator {
	return &ProjectAggregator{totals: make(map[projectKey]*ProjectTotal)}
}

// Add accumulates the project-level lines of one run result.
func (a *ProjectAggregator) Add(result CalculationResult) {
	for _, line := range result.Components {
		if line.Rounding != string(catalog.RoundProject) {
			continue
		}
		key := projectKey{component: line.ComponentCode, material: line.MaterialCode}
		total, ok := a.totals[key]
		if !ok {
			total = &ProjectTotal{
				ComponentCode: line.ComponentCode,
				MaterialCode:  line.MaterialCode,
				Unit:          line.Unit,
			}
			a.totals[key] = total
		}
		total.RawQuantity += line.RawQuantity
	}
}

// Totals rounds each accumulated raw quantity up once and returns the totals
// in deterministic order.
func (a *ProjectAggregator) Totals() []ProjectTotal {
	out := make([]ProjectTotal, 0, len(a.totals))
	for _, total := range a.totals {
		t := *total
		t.Quantity = math.Ceil(t.RawQuantity)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ComponentCode != out[j].ComponentCode {
			return out[i].ComponentCode < out[j].ComponentCode
		}
		return out[i].MaterialCode < out[j].MaterialCode
	})
	return out
}
