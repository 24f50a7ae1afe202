package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/palisade-ops/palisade/internal/bom"
	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/pricing"
)

// TaskEnqueuer hands estimate persistence work to the background worker.
// The jobs package implements it over asynq.
type TaskEnqueuer interface {
	EnqueueEstimatePersist(ctx context.Context, estimateID uuid.UUID, projectID string) error
}

// CreateEstimateRequest describes one estimate: the runs to compute and the
// community scope to price them under.
type CreateEstimateRequest struct {
	CommunityID string
	ProjectID   string
	Runs        []bom.CalculationRequest
}

// Service composes BOM computation and price resolution into persisted
// estimates.
type Service struct {
	logger   *slog.Logger
	catalog  *catalog.Provider
	engine   *bom.Engine
	repo     Repository
	enqueuer TaskEnqueuer
}

func NewService(logger *slog.Logger, provider *catalog.Provider, repo Repository, enqueuer TaskEnqueuer) *Service {
	return &Service{
		logger:   logger,
		catalog:  provider,
		engine:   bom.NewEngine(),
		repo:     repo,
		enqueuer: enqueuer,
	}
}

// Create computes the BOM for every run, prices each line through the
// cascade, persists the estimate atomically, and, when a project is named,
// queues the snapshot write onto the project record.
func (s *Service) Create(ctx context.Context, req CreateEstimateRequest) (*Estimate, error) {
	if len(req.Runs) == 0 {
		return nil, fmt.Errorf("quotes: at least one run required")
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	agg := bom.NewProjectAggregator()
	merged := newLineMerger()
	for i, run := range req.Runs {
		result, err := s.engine.Compute(snap, run)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		agg.Add(*result)
		for _, line := range result.Components {
			if line.Rounding == string(catalog.RoundProject) {
				continue // project lines enter through the aggregator
			}
			merged.add(line.ComponentCode, line.MaterialCode, line.Unit, line.Quantity, false)
		}
		for _, line := range result.LaborLines {
			merged.add(line.ComponentCode, line.LaborCode, line.Unit, line.Quantity, true)
		}
	}
	for _, total := range agg.Totals() {
		merged.add(total.ComponentCode, total.MaterialCode, total.Unit, total.Quantity, false)
	}

	estimate := &Estimate{
		ID:          uuid.New(),
		ProjectID:   req.ProjectID,
		CommunityID: req.CommunityID,
		ProductType: req.Runs[0].ProductType,
		Style:       req.Runs[0].Style,
		CreatedAt:   time.Now().UTC(),
	}

	for _, raw := range merged.lines() {
		unitCost, err := lookupUnitCost(snap, raw.sku, raw.isLabor)
		if err != nil {
			return nil, err
		}
		priced, err := pricing.ResolvePrice(snap, pricing.Request{
			SKU:         raw.sku,
			BaseCost:    unitCost,
			CommunityID: req.CommunityID,
		})
		if err != nil {
			return nil, fmt.Errorf("price %s: %w", raw.sku, err)
		}

		qty := decimal.NewFromFloat(raw.quantity)
		line := EstimateLine{
			ComponentCode: raw.component,
			SKU:           raw.sku,
			IsLabor:       raw.isLabor,
			Quantity:      raw.quantity,
			Unit:          raw.unit,
			UnitCost:      unitCost,
			UnitPrice:     priced.Price,
			LineTotal:     priced.Price.Mul(qty).Round(2),
			Method:        priced.Method,
			Source:        priced.Source,
		}
		estimate.Lines = append(estimate.Lines, line)

		if line.IsLabor {
			estimate.LaborSubtotal = estimate.LaborSubtotal.Add(line.LineTotal)
		} else {
			estimate.MaterialSubtotal = estimate.MaterialSubtotal.Add(line.LineTotal)
		}
	}
	estimate.Total = estimate.MaterialSubtotal.Add(estimate.LaborSubtotal)

	if err := s.repo.Insert(ctx, estimate); err != nil {
		return nil, err
	}

	if req.ProjectID != "" && s.enqueuer != nil {
		if err := s.enqueuer.EnqueueEstimatePersist(ctx, estimate.ID, req.ProjectID); err != nil {
			// The estimate itself is durable; the project stamp retries later.
			s.logger.Error("enqueue estimate persist failed",
				"estimate_id", estimate.ID, "project_id", req.ProjectID, "error", err)
		}
	}

	return estimate, nil
}

// Get loads a persisted estimate.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Estimate, error) {
	return s.repo.Get(ctx, id)
}

func lookupUnitCost(snap *catalog.Snapshot, sku string, isLabor bool) (decimal.Decimal, error) {
	if isLabor {
		if labor, ok := snap.LaborCodes[sku]; ok {
			return labor.UnitCost, nil
		}
		return decimal.Decimal{}, catalog.ConfigErr(sku, catalog.ErrUnknownReference, "unknown labor code")
	}
	if material, ok := snap.Materials[sku]; ok {
		return material.UnitCost, nil
	}
	return decimal.Decimal{}, catalog.ConfigErr(sku, catalog.ErrUnknownReference, "unknown material")
}

// lineMerger folds identical (component, sku) pairs across runs into one
// line, keeping first-seen order deterministic.
type lineMerger struct {
	order []lineKey
	byKey map[lineKey]*mergedLine
}

type lineKey struct {
	component string
	sku       string
}

type mergedLine struct {
	component string
	sku       string
	unit      string
	quantity  float64
	isLabor   bool
}

func newLineMerger() *lineMerger {
	return &lineMerger{byKey: make(map[lineKey]*mergedLine)}
}

func (m *lineMerger) add(component, sku, unit string, quantity float64, isLabor bool) {
	key := lineKey{component: component, sku: sku}
	if existing, ok := m.byKey[key]; ok {
		existing.quantity += quantity
		return
	}
	m.order = append(m.order, key)
	m.byKey[key] = &mergedLine{
		component: component,
		sku:       sku,
		unit:      unit,
		quantity:  quantity,
		isLabor:   isLabor,
	}
}

func (m *lineMerger) lines() []mergedLine {
	out := make([]mergedLine, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, *m.byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].isLabor != out[j].isLabor {
			return !out[i].isLabor // materials before labor
		}
		return false
	})
	return out
}
