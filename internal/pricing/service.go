package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/observability"
)

// Service resolves prices against the current catalog snapshot.
type Service struct {
	logger  *slog.Logger
	catalog *catalog.Provider
}

func NewService(logger *slog.Logger, provider *catalog.Provider) *Service {
	return &Service{logger: logger, catalog: provider}
}

// Resolve prices one SKU.
func (s *Service) Resolve(ctx context.Context, req Request) (Result, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog snapshot: %w", err)
	}
	result, err := ResolvePrice(snap, req)
	if err != nil {
		return Result{}, err
	}
	observability.PriceResolutionsTotal.WithLabelValues(string(result.Source)).Inc()
	return result, nil
}

// ResolveBatch prices a set of SKUs under one scope against one snapshot.
// Results keep request order; any configuration failure fails the batch.
func (s *Service) ResolveBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		result, err := ResolvePrice(snap, req)
		if err != nil {
			return nil, fmt.Errorf("sku %s: %w", req.SKU, err)
		}
		observability.PriceResolutionsTotal.WithLabelValues(string(result.Source)).Inc()
		results = append(results, result)
	}
	return results, nil
}
