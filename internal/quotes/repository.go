package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/palisade-ops/palisade/internal/catalog"
	"github.com/palisade-ops/palisade/internal/platform/db"
	"github.com/palisade-ops/palisade/internal/pricing"
)

// ErrEstimateNotFound is returned when no estimate exists for the given ID.
var ErrEstimateNotFound = errors.New("quotes: estimate not found")

// Repository persists estimates.
type Repository interface {
	Insert(ctx context.Context, estimate *Estimate) error
	Get(ctx context.Context, id uuid.UUID) (*Estimate, error)
	AttachToProject(ctx context.Context, estimateID uuid.UUID, projectID string) error
}

// querier is the read surface shared by *pgxpool.Pool and pgx.Tx, so the same
// load path serves pool reads and in-transaction reads.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the Postgres-backed estimate store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// Insert writes the estimate header and every line in one transaction, so a
// reader never observes a partially persisted estimate.
func (r *pgRepository) Insert(ctx context.Context, estimate *Estimate) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO estimates (
				id, project_id, community_id, product_type, style,
				material_subtotal, labor_subtotal, total, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			estimate.ID,
			nullable(estimate.ProjectID),
			nullable(estimate.CommunityID),
			estimate.ProductType,
			estimate.Style,
			estimate.MaterialSubtotal.String(),
			estimate.LaborSubtotal.String(),
			estimate.Total.String(),
			estimate.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("quotes: insert estimate: %w", err)
		}

		for i, line := range estimate.Lines {
			_, err := tx.Exec(ctx, `
				INSERT INTO estimate_lines (
					estimate_id, line_order, component_code, sku, is_labor,
					quantity, unit, unit_cost, unit_price, line_total, method, source
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				estimate.ID, i, line.ComponentCode, line.SKU, line.IsLabor,
				line.Quantity, line.Unit,
				line.UnitCost.String(), line.UnitPrice.String(), line.LineTotal.String(),
				string(line.Method), string(line.Source),
			)
			if err != nil {
				return fmt.Errorf("quotes: insert estimate line %d: %w", i, err)
			}
		}
		return nil
	})
}

// Get loads an estimate and its lines.
func (r *pgRepository) Get(ctx context.Context, id uuid.UUID) (*Estimate, error) {
	return r.get(ctx, r.pool, id)
}

func (r *pgRepository) get(ctx context.Context, q querier, id uuid.UUID) (*Estimate, error) {
	var (
		estimate               Estimate
		projectID, communityID *string
		material, labor, total string
	)
	err := q.QueryRow(ctx, `
		SELECT id, project_id, community_id, product_type, style,
		       material_subtotal::text, labor_subtotal::text, total::text, created_at
		FROM estimates WHERE id = $1`, id).Scan(
		&estimate.ID, &projectID, &communityID,
		&estimate.ProductType, &estimate.Style,
		&material, &labor, &total, &estimate.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEstimateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("quotes: get estimate: %w", err)
	}
	estimate.ProjectID = deref(projectID)
	estimate.CommunityID = deref(communityID)
	if estimate.MaterialSubtotal, err = parseDecimal(material); err != nil {
		return nil, err
	}
	if estimate.LaborSubtotal, err = parseDecimal(labor); err != nil {
		return nil, err
	}
	if estimate.Total, err = parseDecimal(total); err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT component_code, sku, is_labor, quantity, unit,
		       unit_cost::text, unit_price::text, line_total::text, method, source
		FROM estimate_lines WHERE estimate_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return nil, fmt.Errorf("quotes: get estimate lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line                           EstimateLine
			unitCost, unitPrice, lineTotal string
			method, source                 string
		)
		if err := rows.Scan(
			&line.ComponentCode, &line.SKU, &line.IsLabor, &line.Quantity, &line.Unit,
			&unitCost, &unitPrice, &lineTotal, &method, &source,
		); err != nil {
			return nil, fmt.Errorf("quotes: scan estimate line: %w", err)
		}
		if line.UnitCost, err = parseDecimal(unitCost); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = parseDecimal(unitPrice); err != nil {
			return nil, err
		}
		if line.LineTotal, err = parseDecimal(lineTotal); err != nil {
			return nil, err
		}
		line.Method = catalog.PricingMethod(method)
		line.Source = pricing.Source(source)
		estimate.Lines = append(estimate.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quotes: iterate estimate lines: %w", err)
	}
	return &estimate, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("quotes: parse decimal %q: %w", s, err)
	}
	return d, nil
}

// AttachToProject stamps the estimate snapshot onto its project record. The
// whole write happens in one transaction via the worker task.
func (r *pgRepository) AttachToProject(ctx context.Context, estimateID uuid.UUID, projectID string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Read through the transaction so the snapshot and the project update
		// see the same estimate state.
		estimate, err := r.get(ctx, tx, estimateID)
		if err != nil {
			return err
		}
		snapshot, err := json.Marshal(estimate)
		if err != nil {
			return fmt.Errorf("quotes: encode estimate snapshot: %w", err)
		}
		tag, err := tx.Exec(ctx, `
			UPDATE projects SET estimate_id = $1, estimate_snapshot = $2, updated_at = now()
			WHERE id = $3`, estimateID, snapshot, projectID)
		if err != nil {
			return fmt.Errorf("quotes: attach estimate to project: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("quotes: project %s not found", projectID)
		}
		_, err = tx.Exec(ctx, `UPDATE estimates SET project_id = $1 WHERE id = $2`, projectID, estimateID)
		if err != nil {
			return fmt.Errorf("quotes: stamp project on estimate: %w", err)
		}
		return nil
	})
}
