package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository loads the configuration tables the engine reads.
type Repository interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Postgres-backed catalog repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// LoadSnapshot materializes every configuration table into one read-only
// snapshot. The engine never queries the database after this point.
func (r *repository) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{
		LoadedAt:       time.Now().UTC(),
		ProductTypes:   make(map[string]ProductType),
		ComponentTypes: make(map[string]ComponentType),
		Materials:      make(map[string]Material),
		LaborCodes:     make(map[string]LaborCode),
		RateSheets:     make(map[string]RateSheet),
		PriceBooks:     make(map[string]PriceBook),
		Communities:    make(map[string]Community),
		Clients:        make(map[string]Client),
		BusinessUnits:  make(map[string]BusinessUnit),
	}

	steps := []struct {
		name string
		fn   func(context.Context, *Snapshot) error
	}{
		{"product types", r.loadProductTypes},
		{"styles", r.loadStyles},
		{"component types", r.loadComponentTypes},
		{"formula templates", r.loadTemplates},
		{"materials", r.loadMaterials},
		{"labor codes", r.loadLaborCodes},
		{"eligibility rules", r.loadEligibility},
		{"rate sheets", r.loadRateSheets},
		{"price books", r.loadPriceBooks},
		{"assignments", r.loadAssignments},
	}
	for _, step := range steps {
		if err := step.fn(ctx, s); err != nil {
			return nil, fmt.Errorf("catalog: load %s: %w", step.name, err)
		}
	}
	return s, nil
}

func (r *repository) loadProductTypes(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, default_spacing, is_active
		FROM product_types
		ORDER BY code
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pt ProductType
		if err := rows.Scan(&pt.Code, &pt.Name, &pt.DefaultSpacing, &pt.IsActive); err != nil {
			return err
		}
		s.ProductTypes[pt.Code] = pt
	}
	return rows.Err()
}

func (r *repository) loadStyles(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, product_type_code, name, formula_adjustments, is_active
		FROM product_styles
		ORDER BY product_type_code, code
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var style ProductStyle
		var adjustments []byte
		if err := rows.Scan(&style.Code, &style.ProductTypeCode, &style.Name, &adjustments, &style.IsActive); err != nil {
			return err
		}
		style.FormulaAdjustments = make(map[string]float64)
		if len(adjustments) > 0 {
			if err := json.Unmarshal(adjustments, &style.FormulaAdjustments); err != nil {
				return fmt.Errorf("style %s adjustments: %w", style.Code, err)
			}
		}
		s.Styles = append(s.Styles, style)
	}
	return rows.Err()
}

func (r *repository) loadComponentTypes(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, unit, is_labor, sequence
		FROM component_types
		ORDER BY sequence, code
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ct ComponentType
		if err := rows.Scan(&ct.Code, &ct.Name, &ct.Unit, &ct.IsLabor, &ct.Sequence); err != nil {
			return err
		}
		s.ComponentTypes[ct.Code] = ct
	}
	return rows.Err()
}

func (r *repository) loadTemplates(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_type_code, COALESCE(style_code, ''), component_type_code,
		       expression, rounding_level, priority, is_active
		FROM formula_templates
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t FormulaTemplate
		if err := rows.Scan(&t.ID, &t.ProductTypeCode, &t.StyleCode, &t.ComponentTypeCode,
			&t.Expression, &t.RoundingLevel, &t.Priority, &t.IsActive); err != nil {
			return err
		}
		s.Templates = append(s.Templates, t)
	}
	return rows.Err()
}

func (r *repository) loadMaterials(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, unit, unit_cost::text, attributes, is_active
		FROM materials
		ORDER BY code
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m Material
		var cost string
		var attrs []byte
		if err := rows.Scan(&m.Code, &m.Name, &m.Unit, &cost, &attrs, &m.IsActive); err != nil {
			return err
		}
		unitCost, err := decimal.NewFromString(cost)
		if err != nil {
			return fmt.Errorf("material %s unit cost: %w", m.Code, err)
		}
		m.UnitCost = unitCost
		m.Attributes = make(map[string]float64)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &m.Attributes); err != nil {
				return fmt.Errorf("material %s attributes: %w", m.Code, err)
			}
		}
		s.Materials[m.Code] = m
	}
	return rows.Err()
}

func (r *repository) loadLaborCodes(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, unit, unit_cost::text, is_active
		FROM labor_codes
		ORDER BY code
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var lc LaborCode
		var cost string
		if err := rows.Scan(&lc.Code, &lc.Name, &lc.Unit, &cost, &lc.IsActive); err != nil {
			return err
		}
		unitCost, err := decimal.NewFromString(cost)
		if err != nil {
			return fmt.Errorf("labor code %s unit cost: %w", lc.Code, err)
		}
		lc.UnitCost = unitCost
		s.LaborCodes[lc.Code] = lc
	}
	return rows.Err()
}

func (r *repository) loadEligibility(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_type_code, component_type_code,
		       COALESCE(material_code, ''), COALESCE(labor_code, ''),
		       filters, is_default, display_order, is_active
		FROM eligibility_rules
		ORDER BY display_order, id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rule EligibilityRule
		var filters []byte
		if err := rows.Scan(&rule.ID, &rule.ProductTypeCode, &rule.ComponentTypeCode,
			&rule.MaterialCode, &rule.LaborCodeCode, &filters,
			&rule.IsDefault, &rule.DisplayOrder, &rule.IsActive); err != nil {
			return err
		}
		if len(filters) > 0 {
			if err := json.Unmarshal(filters, &rule.Filters); err != nil {
				return fmt.Errorf("eligibility rule %d filters: %w", rule.ID, err)
			}
		}
		s.Eligibility = append(s.Eligibility, rule)
	}
	return rows.Err()
}

func (r *repository) loadRateSheets(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, type, default_method,
		       default_markup_percent::text, default_margin_percent::text
		FROM rate_sheets
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sheet RateSheet
		var markup, margin *string
		if err := rows.Scan(&sheet.ID, &sheet.Name, &sheet.Type, &sheet.DefaultMethod,
			&markup, &margin); err != nil {
			return err
		}
		if sheet.DefaultMarkupPercent, err = parseOptionalDecimal(markup); err != nil {
			return fmt.Errorf("rate sheet %s default markup: %w", sheet.ID, err)
		}
		if sheet.DefaultMarginPercent, err = parseOptionalDecimal(margin); err != nil {
			return fmt.Errorf("rate sheet %s default margin: %w", sheet.ID, err)
		}
		sheet.Items = make(map[string]RateSheetItem)
		s.RateSheets[sheet.ID] = sheet
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return r.loadRateSheetItems(ctx, s)
}

func (r *repository) loadRateSheetItems(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT rate_sheet_id, sku, method,
		       fixed_price::text, markup_percent::text, margin_percent::text,
		       fixed_amount::text, labor_price::text, material_price::text
		FROM rate_sheet_items
		ORDER BY rate_sheet_id, sku
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sheetID string
		var item RateSheetItem
		var fixed, markup, margin, amount, labor, material *string
		if err := rows.Scan(&sheetID, &item.SKU, &item.Method,
			&fixed, &markup, &margin, &amount, &labor, &material); err != nil {
			return err
		}
		fields := []struct {
			raw  *string
			dest **decimal.Decimal
		}{
			{fixed, &item.FixedPrice},
			{markup, &item.MarkupPercent},
			{margin, &item.MarginPercent},
			{amount, &item.FixedAmount},
			{labor, &item.LaborPrice},
			{material, &item.MaterialPrice},
		}
		for _, f := range fields {
			if *f.dest, err = parseOptionalDecimal(f.raw); err != nil {
				return fmt.Errorf("rate sheet %s item %s: %w", sheetID, item.SKU, err)
			}
		}
		sheet, ok := s.RateSheets[sheetID]
		if !ok {
			return fmt.Errorf("rate sheet item %s references sheet %q", item.SKU, sheetID)
		}
		sheet.Items[item.SKU] = item
	}
	return rows.Err()
}

func (r *repository) loadPriceBooks(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.name, i.sku
		FROM price_books b
		LEFT JOIN price_book_items i ON i.price_book_id = b.id
		ORDER BY b.id, i.sku
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		var sku *string
		if err := rows.Scan(&id, &name, &sku); err != nil {
			return err
		}
		book, ok := s.PriceBooks[id]
		if !ok {
			book = PriceBook{ID: id, Name: name, SKUs: make(map[string]bool)}
		}
		if sku != nil {
			book.SKUs[*sku] = true
		}
		s.PriceBooks[id] = book
	}
	return rows.Err()
}

func (r *repository) loadAssignments(ctx context.Context, s *Snapshot) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, rate_sheet_id, price_book_id
		FROM business_units
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var bu BusinessUnit
		var sheetID, bookID *string
		if err := rows.Scan(&bu.ID, &bu.Name, &sheetID, &bookID); err != nil {
			rows.Close()
			return err
		}
		bu.RateSheetID = deref(sheetID)
		bu.PriceBookID = deref(bookID)
		s.BusinessUnits[bu.ID] = bu
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, name, business_unit_id, rate_sheet_id, price_book_id
		FROM clients
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var c Client
		var sheetID, bookID *string
		if err := rows.Scan(&c.ID, &c.Name, &c.BusinessUnitID, &sheetID, &bookID); err != nil {
			rows.Close()
			return err
		}
		c.RateSheetID = deref(sheetID)
		c.PriceBookID = deref(bookID)
		s.Clients[c.ID] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT c.id, c.name, c.client_id, c.rate_sheet_id, c.price_book_id,
		       o.sku, o.price::text
		FROM communities c
		LEFT JOIN community_price_overrides o ON o.community_id = c.id
		ORDER BY c.id, o.sku
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name, clientID string
		var sheetID, bookID, sku, price *string
		if err := rows.Scan(&id, &name, &clientID, &sheetID, &bookID, &sku, &price); err != nil {
			return err
		}
		community, ok := s.Communities[id]
		if !ok {
			community = Community{
				ID:             id,
				Name:           name,
				ClientID:       clientID,
				RateSheetID:    deref(sheetID),
				PriceBookID:    deref(bookID),
				PriceOverrides: make(map[string]decimal.Decimal),
			}
		}
		if sku != nil && price != nil {
			override, err := decimal.NewFromString(*price)
			if err != nil {
				return fmt.Errorf("community %s override %s: %w", id, *sku, err)
			}
			community.PriceOverrides[*sku] = override
		}
		s.Communities[id] = community
	}
	return rows.Err()
}

func parseOptionalDecimal(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
