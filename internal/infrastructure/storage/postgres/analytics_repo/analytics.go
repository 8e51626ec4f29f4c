// Package analytics_repo provides the PostgreSQL implementation of the
// analytics repository: the joined ledger read model plus precomputed
// rows stored with JSONB trend series.
package analytics_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/analytics"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
)

// Compile-time check that AnalyticsRepo implements analytics.Repository.
var _ analytics.Repository = (*AnalyticsRepo)(nil)

// AnalyticsRepo implements analytics.Repository.
type AnalyticsRepo struct {
	txManager *postgres.TxManager
}

// NewAnalyticsRepo creates a new analytics repository.
func NewAnalyticsRepo(txManager *postgres.TxManager) *AnalyticsRepo {
	return &AnalyticsRepo{txManager: txManager}
}

// LotFacts returns lots joined with their directory names, restock
// threshold and consumption sums. The grouped subqueries keep this a
// fixed number of scans regardless of lot count.
func (r *AnalyticsRepo) LotFacts(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]analytics.LotFact, error) {
	sql := `
		SELECT
			l.id AS lot_id,
			l.ingredient_id,
			i.name AS ingredient_name,
			i.restock_threshold,
			l.supplier_id,
			COALESCE(sp.name, '') AS supplier_name,
			COALESCE(c.name, '') AS category_name,
			l.quantity,
			l.purchase_price,
			l.purchase_date,
			COALESCE(u.total, 0) AS used_qty,
			COALESCE(s.total, 0) AS spoiled_qty
		FROM ledger_purchase_lots l
		JOIN cat_ingredients i ON i.id = l.ingredient_id
		LEFT JOIN cat_suppliers sp ON sp.id = l.supplier_id
		LEFT JOIN cat_categories c ON c.id = i.category_id
		LEFT JOIN (
			SELECT lot_id, SUM(quantity) AS total
			FROM ledger_usage_events
			WHERE tenant_id = $1
			GROUP BY lot_id
		) u ON u.lot_id = l.id
		LEFT JOIN (
			SELECT lot_id, SUM(quantity) AS total
			FROM ledger_spoilage_events
			WHERE tenant_id = $1
			GROUP BY lot_id
		) s ON s.lot_id = l.id
		WHERE l.tenant_id = $1
	`
	args := []any{tenantID}

	if len(ingredientIDs) > 0 {
		sql += " AND l.ingredient_id = ANY($2)"
		args = append(args, ingredientIDs)
	}
	sql += " ORDER BY l.purchase_date ASC, l.id ASC"

	var facts []analytics.LotFact
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &facts, sql, args...); err != nil {
		return nil, fmt.Errorf("select lot facts: %w", err)
	}
	return facts, nil
}

// DailyPurchaseValues returns purchased value grouped by calendar date.
// The end date is inclusive.
func (r *AnalyticsRepo) DailyPurchaseValues(ctx context.Context, tenantID id.ID, from, to time.Time) ([]analytics.DailyValue, error) {
	sql := `
		SELECT purchase_date::date AS day, SUM(purchase_price) AS value
		FROM ledger_purchase_lots
		WHERE tenant_id = $1
		  AND purchase_date >= $2
		  AND purchase_date < $3 + INTERVAL '1 day'
		GROUP BY purchase_date::date
		ORDER BY day ASC
	`

	var rows []analytics.DailyValue
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, tenantID, from, to); err != nil {
		return nil, fmt.Errorf("daily purchase values: %w", err)
	}
	return rows, nil
}

// DailyConsumptionValues returns usage plus spoilage valued at each
// lot's unit price, grouped by calendar date. Lots without a usable
// quantity contribute nothing, matching the zero unit price rule.
func (r *AnalyticsRepo) DailyConsumptionValues(ctx context.Context, tenantID id.ID, from, to time.Time) ([]analytics.DailyValue, error) {
	sql := `
		SELECT day, SUM(value) AS value FROM (
			SELECT e.used_at::date AS day,
			       e.quantity * l.purchase_price / l.quantity AS value
			FROM ledger_usage_events e
			JOIN ledger_purchase_lots l ON l.id = e.lot_id
			WHERE e.tenant_id = $1 AND l.quantity > 0
			  AND e.used_at >= $2
			  AND e.used_at < $3 + INTERVAL '1 day'
			UNION ALL
			SELECT e.spoiled_at::date AS day,
			       e.quantity * l.purchase_price / l.quantity AS value
			FROM ledger_spoilage_events e
			JOIN ledger_purchase_lots l ON l.id = e.lot_id
			WHERE e.tenant_id = $1 AND l.quantity > 0
			  AND e.spoiled_at >= $2
			  AND e.spoiled_at < $3 + INTERVAL '1 day'
		) consumed
		GROUP BY day
		ORDER BY day ASC
	`

	var rows []analytics.DailyValue
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, tenantID, from, to); err != nil {
		return nil, fmt.Errorf("daily consumption values: %w", err)
	}
	return rows, nil
}

// analyticsRow is the storage shape of an IngredientAnalytics row; the
// trend series live in JSONB columns.
type analyticsRow struct {
	TenantID          id.ID           `db:"tenant_id"`
	IngredientID      id.ID           `db:"ingredient_id"`
	PriceTrend        json.RawMessage `db:"price_trend"`
	StockValueTrend   json.RawMessage `db:"stock_value_trend"`
	AvgUnitPrice      decimal.Decimal `db:"avg_unit_price"`
	CurrentRemaining  decimal.Decimal `db:"current_remaining"`
	CurrentStockValue decimal.Decimal `db:"current_stock_value"`
	ComputedAt        time.Time       `db:"computed_at"`
}

// UpsertIngredientAnalytics writes the row for (tenant, ingredient).
func (r *AnalyticsRepo) UpsertIngredientAnalytics(ctx context.Context, row *analytics.IngredientAnalytics) error {
	priceTrend, err := json.Marshal(row.PriceTrend)
	if err != nil {
		return fmt.Errorf("marshal price trend: %w", err)
	}
	valueTrend, err := json.Marshal(row.StockValueTrend)
	if err != nil {
		return fmt.Errorf("marshal stock value trend: %w", err)
	}

	sql := `
		INSERT INTO analytics_ingredients (
			tenant_id, ingredient_id, price_trend, stock_value_trend,
			avg_unit_price, current_remaining, current_stock_value, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, ingredient_id) DO UPDATE SET
			price_trend = EXCLUDED.price_trend,
			stock_value_trend = EXCLUDED.stock_value_trend,
			avg_unit_price = EXCLUDED.avg_unit_price,
			current_remaining = EXCLUDED.current_remaining,
			current_stock_value = EXCLUDED.current_stock_value,
			computed_at = EXCLUDED.computed_at
	`

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		row.TenantID, row.IngredientID, priceTrend, valueTrend,
		row.AvgUnitPrice, row.CurrentRemaining, row.CurrentStockValue,
		row.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert ingredient analytics: %w", err)
	}
	return nil
}

// GetIngredientAnalytics retrieves the stored row.
func (r *AnalyticsRepo) GetIngredientAnalytics(ctx context.Context, tenantID, ingredientID id.ID) (*analytics.IngredientAnalytics, error) {
	sql := `
		SELECT tenant_id, ingredient_id, price_trend, stock_value_trend,
			   avg_unit_price, current_remaining, current_stock_value, computed_at
		FROM analytics_ingredients
		WHERE tenant_id = $1 AND ingredient_id = $2
	`

	var raw analyticsRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &raw, sql, tenantID, ingredientID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient analytics", ingredientID.String())
		}
		return nil, fmt.Errorf("get ingredient analytics: %w", err)
	}

	return rowToAnalytics(&raw)
}

func rowToAnalytics(raw *analyticsRow) (*analytics.IngredientAnalytics, error) {
	row := &analytics.IngredientAnalytics{
		TenantID:     raw.TenantID,
		IngredientID: raw.IngredientID,
		ComputedAt:   raw.ComputedAt,
	}

	if len(raw.PriceTrend) > 0 {
		if err := json.Unmarshal(raw.PriceTrend, &row.PriceTrend); err != nil {
			return nil, fmt.Errorf("unmarshal price trend: %w", err)
		}
	}
	if len(raw.StockValueTrend) > 0 {
		if err := json.Unmarshal(raw.StockValueTrend, &row.StockValueTrend); err != nil {
			return nil, fmt.Errorf("unmarshal stock value trend: %w", err)
		}
	}

	row.AvgUnitPrice = raw.AvgUnitPrice
	row.CurrentRemaining = raw.CurrentRemaining
	row.CurrentStockValue = raw.CurrentStockValue
	return row, nil
}

// UpsertDailySnapshot writes the row for (tenant, date).
func (r *AnalyticsRepo) UpsertDailySnapshot(ctx context.Context, snap *analytics.DailySnapshot) error {
	sql := `
		INSERT INTO analytics_daily_snapshots (
			tenant_id, snapshot_date, total_stock_value, total_purchase_cost,
			total_usage_cost, total_spoilage_cost, lot_count, ingredient_count,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, snapshot_date) DO UPDATE SET
			total_stock_value = EXCLUDED.total_stock_value,
			total_purchase_cost = EXCLUDED.total_purchase_cost,
			total_usage_cost = EXCLUDED.total_usage_cost,
			total_spoilage_cost = EXCLUDED.total_spoilage_cost,
			lot_count = EXCLUDED.lot_count,
			ingredient_count = EXCLUDED.ingredient_count,
			created_at = EXCLUDED.created_at
	`

	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		snap.TenantID, snap.Date, snap.TotalStockValue, snap.TotalPurchaseCost,
		snap.TotalUsageCost, snap.TotalSpoilageCost, snap.LotCount,
		snap.IngredientCount, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert daily snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns stored daily snapshots in the date range.
func (r *AnalyticsRepo) ListSnapshots(ctx context.Context, tenantID id.ID, from, to time.Time) ([]analytics.DailySnapshot, error) {
	sql := `
		SELECT tenant_id, snapshot_date, total_stock_value, total_purchase_cost,
			   total_usage_cost, total_spoilage_cost, lot_count, ingredient_count,
			   created_at
		FROM analytics_daily_snapshots
		WHERE tenant_id = $1 AND snapshot_date >= $2 AND snapshot_date <= $3
		ORDER BY snapshot_date ASC
	`

	var snaps []analytics.DailySnapshot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &snaps, sql, tenantID, from, to); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

// ListStale returns analytics rows computed before the cutoff.
func (r *AnalyticsRepo) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]analytics.StaleEntry, error) {
	sql := `
		SELECT tenant_id, ingredient_id
		FROM analytics_ingredients
		WHERE computed_at < $1
		ORDER BY computed_at ASC
		LIMIT $2
	`

	var entries []analytics.StaleEntry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list stale analytics: %w", err)
	}
	return entries, nil
}

// ListTenants returns every tenant with at least one purchase lot.
func (r *AnalyticsRepo) ListTenants(ctx context.Context) ([]id.ID, error) {
	sql := `SELECT DISTINCT tenant_id FROM ledger_purchase_lots`

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []id.ID
	for rows.Next() {
		var tenantID id.ID
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, tenantID)
	}
	return tenants, rows.Err()
}
