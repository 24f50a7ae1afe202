package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/palisade-ops/palisade/internal/observability"
)

// Provider hands out read-only snapshots to calculations. Every snapshot it
// returns has passed validation; the engine downstream can assume the
// structural invariants hold.
type Provider struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewProvider constructs a Provider.
func NewProvider(repo Repository, cache *Cache, logger *slog.Logger) *Provider {
	return &Provider{repo: repo, cache: cache, logger: logger}
}

// Snapshot returns the current configuration snapshot, loading and validating
// when the cache misses.
func (p *Provider) Snapshot(ctx context.Context) (*Snapshot, error) {
	return p.cache.Fetch(ctx, func(ctx context.Context) (*Snapshot, error) {
		snapshot, err := p.repo.LoadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		observability.CatalogReloads.Inc()
		if violations := Validate(snapshot); len(violations) > 0 {
			for _, v := range violations {
				p.logger.Error("catalog validation failed", slog.Any("error", v))
			}
			return nil, fmt.Errorf("catalog: %d validation violations, first: %w",
				len(violations), violations[0])
		}
		return snapshot, nil
	})
}

// Invalidate forces the next Snapshot call to reload from the store.
func (p *Provider) Invalidate(ctx context.Context) error {
	return p.cache.Bump(ctx)
}

// Check loads the configuration fresh and reports validation violations
// without touching the cache. Used by the validation endpoint and the nightly
// job.
func (p *Provider) Check(ctx context.Context) ([]error, error) {
	snapshot, err := p.repo.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	violations := Validate(snapshot)
	observability.CatalogValidationErrors.Set(float64(len(violations)))
	return violations, nil
}
