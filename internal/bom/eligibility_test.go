package bom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-ops/palisade/internal/catalog"
)

func filteredSnapshot() *catalog.Snapshot {
	snap := fenceSnapshot()
	snap.Materials["POST-CDR-4x4"] = catalog.Material{Code: "POST-CDR-4x4", Unit: "ea", IsActive: true}
	snap.Eligibility = append(snap.Eligibility,
		catalog.EligibilityRule{
			ID: 10, ProductTypeCode: "wood-vertical", ComponentTypeCode: "post",
			MaterialCode: "POST-CDR-4x4",
			Filters: []catalog.Predicate{
				{Attribute: "postType", Kind: catalog.PredicateEquals, Equals: "cedar"},
			},
			DisplayOrder: 1, IsActive: true,
		},
	)
	return snap
}

func TestEligibleOptionsUnfiltered(t *testing.T) {
	options, err := EligibleOptions(fenceSnapshot(), "wood-vertical", "post", catalog.FilterContext{})
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "POST-PT-4x4", options[0].Code)
	assert.True(t, options[0].IsDefault)
}

func TestEligibleOptionsPredicateMatch(t *testing.T) {
	ctx := catalog.FilterContext{Strings: map[string]string{"postType": "cedar"}}

	options, err := EligibleOptions(filteredSnapshot(), "wood-vertical", "post", ctx)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "POST-PT-4x4", options[0].Code)
	assert.Equal(t, "POST-CDR-4x4", options[1].Code)
}

func TestEligibleOptionsPredicateExcludes(t *testing.T) {
	ctx := catalog.FilterContext{Strings: map[string]string{"postType": "pressure-treated"}}

	options, err := EligibleOptions(filteredSnapshot(), "wood-vertical", "post", ctx)
	require.NoError(t, err)
	require.Len(t, options, 1, "cedar-only rule must not match")
	assert.Equal(t, "POST-PT-4x4", options[0].Code)
}

func TestEligibleOptionsAbsentAttributeExcludes(t *testing.T) {
	// No postType supplied: the guarded rule never matches.
	options, err := EligibleOptions(filteredSnapshot(), "wood-vertical", "post", catalog.FilterContext{})
	require.NoError(t, err)
	require.Len(t, options, 1)
}

func TestEligibleOptionsEmptyIsError(t *testing.T) {
	snap := fenceSnapshot()
	snap.Eligibility = nil

	_, err := EligibleOptions(snap, "wood-vertical", "post", catalog.FilterContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrNoEligibleOption)
}

func TestDefaultOptionPrefersFlagged(t *testing.T) {
	options := []Option{
		{Code: "A"},
		{Code: "B", IsDefault: true},
		{Code: "C"},
	}
	assert.Equal(t, "B", DefaultOption(options).Code)
}

func TestDefaultOptionFallsBackToFirst(t *testing.T) {
	options := []Option{{Code: "A"}, {Code: "B"}}
	assert.Equal(t, "A", DefaultOption(options).Code)
}

func TestEligibleOptionsLaborFlag(t *testing.T) {
	options, err := EligibleOptions(fenceSnapshot(), "wood-vertical", "labor-install", catalog.FilterContext{})
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.True(t, options[0].IsLabor)
	assert.Equal(t, "LAB-INSTALL", options[0].Code)
}
