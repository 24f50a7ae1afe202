package bom

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/palisade-ops/palisade/internal/catalog"
)

// Service exposes BOM computation over the current catalog snapshot.
type Service struct {
	logger  *slog.Logger
	catalog *catalog.Provider
	engine  *Engine
}

func NewService(logger *slog.Logger, provider *catalog.Provider) *Service {
	return &Service{
		logger:  logger,
		catalog: provider,
		engine:  NewEngine(),
	}
}

// Compute calculates the BOM for a single run.
func (s *Service) Compute(ctx context.Context, req CalculationRequest) (*CalculationResult, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	return s.engine.Compute(snap, req)
}

// ComputeProject calculates every run of a project concurrently against one
// snapshot, then aggregates project-level components across runs and rounds
// each total once. Run order in the result matches request order.
func (s *Service) ComputeProject(ctx context.Context, reqs []CalculationRequest) (*ProjectResult, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	results := make([]*CalculationResult, len(reqs))
	g, _ := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.engine.Compute(snap, req)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := NewProjectAggregator()
	out := &ProjectResult{Runs: make([]CalculationResult, 0, len(results))}
	for _, res := range results {
		out.Runs = append(out.Runs, *res)
		agg.Add(*res)
	}
	out.ProjectTotals = agg.Totals()
	return out, nil
}
