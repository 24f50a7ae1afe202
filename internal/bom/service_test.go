package bom

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-ops/palisade/internal/catalog"
)

type stubCatalogRepo struct {
	snapshot *catalog.Snapshot
}

func (r *stubCatalogRepo) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	return r.snapshot, nil
}

func newTestService(snap *catalog.Snapshot) *Service {
	logger := slog.Default()
	provider := catalog.NewProvider(&stubCatalogRepo{snapshot: snap}, catalog.NewCache(nil, 0), logger)
	return NewService(logger, provider)
}

func TestServiceCompute(t *testing.T) {
	svc := newTestService(fenceSnapshot())

	result, err := svc.Compute(context.Background(), standardRequest())
	require.NoError(t, err)
	assert.Equal(t, float64(14), componentLine(t, result, "post").Quantity)
}

func TestServiceComputeProject(t *testing.T) {
	svc := newTestService(fenceSnapshot())

	// Three identical 30 ft runs: 5 posts each, concrete raw 1.665 bags each.
	run := standardRequest()
	run.Inputs.RunLength = 30
	reqs := []CalculationRequest{run, run, run}

	result, err := svc.ComputeProject(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, result.Runs, 3)

	for _, r := range result.Runs {
		assert.Equal(t, float64(5), componentLine(t, &r, "post").Quantity)
	}

	// Per-run rounding would need 2 bags per run (6 total); pooling the raw
	// quantities first needs ceil(3 * 1.665) = 5.
	require.Len(t, result.ProjectTotals, 1)
	assert.Equal(t, "concrete", result.ProjectTotals[0].ComponentCode)
	assert.Equal(t, float64(5), result.ProjectTotals[0].Quantity)
}

func TestServiceComputeProjectRunOrderPreserved(t *testing.T) {
	svc := newTestService(fenceSnapshot())

	short := standardRequest()
	short.Inputs.RunLength = 30
	long := standardRequest()

	result, err := svc.ComputeProject(context.Background(), []CalculationRequest{short, long})
	require.NoError(t, err)
	require.Len(t, result.Runs, 2)
	assert.Equal(t, float64(5), componentLine(t, &result.Runs[0], "post").Quantity)
	assert.Equal(t, float64(14), componentLine(t, &result.Runs[1], "post").Quantity)
}

func TestServiceComputeProjectPropagatesRunError(t *testing.T) {
	svc := newTestService(fenceSnapshot())

	good := standardRequest()
	bad := standardRequest()
	bad.ProductType = "chain-link"

	_, err := svc.ComputeProject(context.Background(), []CalculationRequest{good, bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrUnknownReference)
	assert.Contains(t, err.Error(), "run 1")
}
