package quotes

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-ops/palisade/internal/bom"
	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/pricing"
)

type stubCatalogRepo struct {
	snapshot *catalog.Snapshot
}

func (r *stubCatalogRepo) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	return r.snapshot, nil
}

type memoryRepo struct {
	inserted []*Estimate
	attached map[uuid.UUID]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{attached: make(map[uuid.UUID]string)}
}

func (r *memoryRepo) Insert(ctx context.Context, estimate *Estimate) error {
	r.inserted = append(r.inserted, estimate)
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (*Estimate, error) {
	for _, e := range r.inserted {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrEstimateNotFound
}

func (r *memoryRepo) AttachToProject(ctx context.Context, estimateID uuid.UUID, projectID string) error {
	r.attached[estimateID] = projectID
	return nil
}

type recordingEnqueuer struct {
	calls []string
}

func (e *recordingEnqueuer) EnqueueEstimatePersist(ctx context.Context, estimateID uuid.UUID, projectID string) error {
	e.calls = append(e.calls, projectID)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// quoteSnapshot is a minimal priced fence catalog: posts and install labor,
// a community whose client sheet sells everything at 20% margin.
func quoteSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		ProductTypes: map[string]catalog.ProductType{
			"wood-vertical": {Code: "wood-vertical", DefaultSpacing: 8, IsActive: true},
		},
		Styles: []catalog.ProductStyle{
			{Code: "standard", ProductTypeCode: "wood-vertical", IsActive: true},
		},
		ComponentTypes: map[string]catalog.ComponentType{
			"post":          {Code: "post", Unit: "ea", Sequence: 10},
			"labor-install": {Code: "labor-install", Unit: "hr", IsLabor: true, Sequence: 20},
		},
		Templates: []catalog.FormulaTemplate{
			{ID: 1, ProductTypeCode: "wood-vertical", ComponentTypeCode: "post",
				Expression:    "ROUNDUP([run_length] / [post_spacing]) + 1",
				RoundingLevel: catalog.RoundSKU, IsActive: true},
			{ID: 2, ProductTypeCode: "wood-vertical", ComponentTypeCode: "labor-install",
				Expression:    "[run_length] / 100",
				RoundingLevel: catalog.RoundNone, IsActive: true},
		},
		Eligibility: []catalog.EligibilityRule{
			{ID: 1, ProductTypeCode: "wood-vertical", ComponentTypeCode: "post", MaterialCode: "POST-PT-4x4", IsDefault: true, IsActive: true},
			{ID: 2, ProductTypeCode: "wood-vertical", ComponentTypeCode: "labor-install", LaborCodeCode: "LAB-INSTALL", IsDefault: true, IsActive: true},
		},
		Materials: map[string]catalog.Material{
			"POST-PT-4x4": {Code: "POST-PT-4x4", Unit: "ea", UnitCost: dec("12.50"), IsActive: true},
		},
		LaborCodes: map[string]catalog.LaborCode{
			"LAB-INSTALL": {Code: "LAB-INSTALL", Unit: "hr", UnitCost: dec("45"), IsActive: true},
		},
		RateSheets: map[string]catalog.RateSheet{
			"rs-1": {
				ID: "rs-1", Type: catalog.SheetFormula,
				DefaultMethod:        catalog.MethodMargin,
				DefaultMarginPercent: decPtr("20"),
				Items:                map[string]catalog.RateSheetItem{},
			},
		},
		Communities: map[string]catalog.Community{
			"oakridge": {ID: "oakridge", ClientID: "meridian"},
		},
		Clients: map[string]catalog.Client{
			"meridian": {ID: "meridian", BusinessUnitID: "south", RateSheetID: "rs-1"},
		},
		BusinessUnits: map[string]catalog.BusinessUnit{
			"south": {ID: "south"},
		},
	}
}

func newTestService(snap *catalog.Snapshot, repo Repository, enqueuer TaskEnqueuer) *Service {
	logger := slog.Default()
	provider := catalog.NewProvider(&stubCatalogRepo{snapshot: snap}, catalog.NewCache(nil, 0), logger)
	return NewService(logger, provider, repo, enqueuer)
}

func standardRun() bom.CalculationRequest {
	return bom.CalculationRequest{
		ProductType: "wood-vertical",
		Style:       "standard",
		Inputs:      bom.Inputs{Height: 6, RunLength: 100, RailCount: 2},
	}
}

func TestCreateEstimate(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(quoteSnapshot(), repo, nil)

	estimate, err := svc.Create(context.Background(), CreateEstimateRequest{
		CommunityID: "oakridge",
		Runs:        []bom.CalculationRequest{standardRun()},
	})
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	assert.NotEqual(t, uuid.Nil, estimate.ID)
	require.Len(t, estimate.Lines, 2)

	post := estimate.Lines[0]
	assert.Equal(t, "POST-PT-4x4", post.SKU)
	assert.Equal(t, float64(14), post.Quantity)
	// 12.50 at 20% margin: 12.50 / 0.80 = 15.63 after cent rounding.
	assert.True(t, post.UnitPrice.Equal(dec("15.63")), "got %s", post.UnitPrice)
	assert.True(t, post.LineTotal.Equal(dec("218.82")), "got %s", post.LineTotal)
	assert.Equal(t, pricing.SourceClient, post.Source)

	labor := estimate.Lines[1]
	assert.True(t, labor.IsLabor)
	assert.Equal(t, "LAB-INSTALL", labor.SKU)
	assert.True(t, labor.UnitPrice.Equal(dec("56.25")))

	assert.True(t, estimate.MaterialSubtotal.Equal(dec("218.82")))
	assert.True(t, estimate.LaborSubtotal.Equal(dec("56.25")))
	assert.True(t, estimate.Total.Equal(dec("275.07")))
}

func TestCreateEstimateMergesRuns(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(quoteSnapshot(), repo, nil)

	estimate, err := svc.Create(context.Background(), CreateEstimateRequest{
		CommunityID: "oakridge",
		Runs:        []bom.CalculationRequest{standardRun(), standardRun()},
	})
	require.NoError(t, err)
	require.Len(t, estimate.Lines, 2, "identical runs merge into one line per SKU")
	assert.Equal(t, float64(28), estimate.Lines[0].Quantity)
}

func TestCreateEstimateEnqueuesProjectPersist(t *testing.T) {
	repo := newMemoryRepo()
	enqueuer := &recordingEnqueuer{}
	svc := newTestService(quoteSnapshot(), repo, enqueuer)

	_, err := svc.Create(context.Background(), CreateEstimateRequest{
		CommunityID: "oakridge",
		ProjectID:   "proj-77",
		Runs:        []bom.CalculationRequest{standardRun()},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-77"}, enqueuer.calls)
}

func TestCreateEstimateNoProjectSkipsEnqueue(t *testing.T) {
	repo := newMemoryRepo()
	enqueuer := &recordingEnqueuer{}
	svc := newTestService(quoteSnapshot(), repo, enqueuer)

	_, err := svc.Create(context.Background(), CreateEstimateRequest{
		CommunityID: "oakridge",
		Runs:        []bom.CalculationRequest{standardRun()},
	})
	require.NoError(t, err)
	assert.Empty(t, enqueuer.calls)
}

func TestCreateEstimateCostOnlyWithoutScope(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(quoteSnapshot(), repo, nil)

	estimate, err := svc.Create(context.Background(), CreateEstimateRequest{
		Runs: []bom.CalculationRequest{standardRun()},
	})
	require.NoError(t, err)
	post := estimate.Lines[0]
	assert.Equal(t, catalog.MethodCostOnly, post.Method)
	assert.True(t, post.UnitPrice.Equal(dec("12.50")), "base cost passes through")
}

func TestCreateEstimatePropagatesComputeError(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(quoteSnapshot(), repo, nil)

	run := standardRun()
	run.ProductType = "chain-link"
	_, err := svc.Create(context.Background(), CreateEstimateRequest{
		Runs: []bom.CalculationRequest{run},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrUnknownReference)
	assert.Empty(t, repo.inserted, "nothing persists when a run fails")
}

func TestGetEstimateNotFound(t *testing.T) {
	svc := newTestService(quoteSnapshot(), newMemoryRepo(), nil)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEstimateNotFound)
}
