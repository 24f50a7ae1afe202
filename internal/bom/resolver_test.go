package bom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-ops/palisade/internal/catalog"
)

func TestResolveTemplateWildcardFallback(t *testing.T) {
	snap := fenceSnapshot()

	// standard has no picket-specific template, so the wildcard applies.
	template, err := ResolveTemplate(snap, "wood-vertical", "standard", "picket")
	require.NoError(t, err)
	assert.True(t, template.IsWildcard())
	assert.Equal(t, int64(3), template.ID)
}

func TestResolveTemplateStyleOverrideWins(t *testing.T) {
	snap := fenceSnapshot()

	template, err := ResolveTemplate(snap, "wood-vertical", "good-neighbor", "picket")
	require.NoError(t, err)
	assert.Equal(t, "good-neighbor", template.StyleCode)
	assert.Equal(t, 10, template.Priority)
}

func TestResolveTemplateNoFormula(t *testing.T) {
	snap := fenceSnapshot()

	_, err := ResolveTemplate(snap, "wood-vertical", "standard", "cap-board")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrNoFormula)
}

func TestResolveTemplatePriorityTie(t *testing.T) {
	snap := fenceSnapshot()
	snap.Templates = append(snap.Templates, catalog.FormulaTemplate{
		ID: 99, ProductTypeCode: "wood-vertical", StyleCode: "good-neighbor",
		ComponentTypeCode: "picket", Expression: "[run_length]",
		RoundingLevel: catalog.RoundSKU, Priority: 10, IsActive: true,
	})

	_, err := ResolveTemplate(snap, "wood-vertical", "good-neighbor", "picket")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrAmbiguousFormula)
}

func TestResolveTemplateIgnoresInactive(t *testing.T) {
	snap := fenceSnapshot()
	for i := range snap.Templates {
		if snap.Templates[i].ID == 4 {
			snap.Templates[i].IsActive = false
		}
	}

	template, err := ResolveTemplate(snap, "wood-vertical", "good-neighbor", "picket")
	require.NoError(t, err)
	assert.True(t, template.IsWildcard(), "inactive override falls back to wildcard")
}

func TestResolveTemplateIgnoresOtherStyles(t *testing.T) {
	// The good-neighbor override must not leak into the standard style.
	template, err := ResolveTemplate(fenceSnapshot(), "wood-vertical", "standard", "picket")
	require.NoError(t, err)
	assert.Equal(t, int64(3), template.ID)
}
