// Package ledger_repo provides the PostgreSQL implementation of the
// inventory ledger repository. The ledger tables are append-only: lots
// and events are inserted, never updated or deleted.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
)

const (
	lotsTable     = "ledger_purchase_lots"
	usageTable    = "ledger_usage_events"
	spoilageTable = "ledger_spoilage_events"
)

// Compile-time check that LedgerRepo implements ledger.Repository.
var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	lotCols   []string
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		lotCols:   postgres.ExtractDBColumns[ledger.PurchaseLot](),
	}
}

func (r *LedgerRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *LedgerRepo) lotSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.lotCols...).
		From(lotsTable)
}

// InsertLot appends a purchase lot.
func (r *LedgerRepo) InsertLot(ctx context.Context, lot *ledger.PurchaseLot) error {
	q := r.builder().
		Insert(lotsTable).
		SetMap(postgres.StructToMap(lot))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetLot retrieves a lot within the tenant.
func (r *LedgerRepo) GetLot(ctx context.Context, tenantID, lotID id.ID) (*ledger.PurchaseLot, error) {
	return r.getLot(ctx, tenantID, lotID, false)
}

// GetLotForUpdate retrieves a lot with a row lock.
func (r *LedgerRepo) GetLotForUpdate(ctx context.Context, tenantID, lotID id.ID) (*ledger.PurchaseLot, error) {
	return r.getLot(ctx, tenantID, lotID, true)
}

func (r *LedgerRepo) getLot(ctx context.Context, tenantID, lotID id.ID, forUpdate bool) (*ledger.PurchaseLot, error) {
	q := r.lotSelect().
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": lotID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lot ledger.PurchaseLot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &lot, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase lot", lotID.String())
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &lot, nil
}

// ListLots retrieves lots matching the filter, oldest purchase first.
func (r *LedgerRepo) ListLots(ctx context.Context, tenantID id.ID, filter ledger.LotFilter) ([]ledger.PurchaseLot, error) {
	q := r.lotSelect().
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("purchase_date ASC", "id ASC")

	if filter.IngredientID != nil {
		q = q.Where(squirrel.Eq{"ingredient_id": *filter.IngredientID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"purchase_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"purchase_date": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.selectLots(ctx, q)
}

// GetLots batch-fetches lots by ID within the tenant.
func (r *LedgerRepo) GetLots(ctx context.Context, tenantID id.ID, lotIDs []id.ID) ([]ledger.PurchaseLot, error) {
	if len(lotIDs) == 0 {
		return nil, nil
	}

	q := r.lotSelect().
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": lotIDs}).
		OrderBy("purchase_date ASC", "id ASC")

	return r.selectLots(ctx, q)
}

// ListLotsByIngredients batch-fetches lots for a set of ingredients in
// stable FIFO order.
func (r *LedgerRepo) ListLotsByIngredients(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]ledger.PurchaseLot, error) {
	return r.listByIngredients(ctx, tenantID, ingredientIDs, false)
}

// ListLotsByIngredientsForUpdate is ListLotsByIngredients with row locks.
func (r *LedgerRepo) ListLotsByIngredientsForUpdate(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]ledger.PurchaseLot, error) {
	return r.listByIngredients(ctx, tenantID, ingredientIDs, true)
}

func (r *LedgerRepo) listByIngredients(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID, forUpdate bool) ([]ledger.PurchaseLot, error) {
	if len(ingredientIDs) == 0 {
		return nil, nil
	}

	q := r.lotSelect().
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"ingredient_id": ingredientIDs}).
		OrderBy("purchase_date ASC", "id ASC")
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	return r.selectLots(ctx, q)
}

// LatestLotPerIngredient returns the most recent lot per ingredient using
// DISTINCT ON, one query for any number of ingredients.
func (r *LedgerRepo) LatestLotPerIngredient(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) (map[id.ID]ledger.PurchaseLot, error) {
	if len(ingredientIDs) == 0 {
		return map[id.ID]ledger.PurchaseLot{}, nil
	}

	q := r.builder().
		Select(r.lotCols...).
		Options("DISTINCT ON (ingredient_id)").
		From(lotsTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"ingredient_id": ingredientIDs}).
		OrderBy("ingredient_id", "purchase_date DESC", "id DESC")

	lots, err := r.selectLots(ctx, q)
	if err != nil {
		return nil, err
	}

	result := make(map[id.ID]ledger.PurchaseLot, len(lots))
	for i := range lots {
		result[lots[i].IngredientID] = lots[i]
	}
	return result, nil
}

// ExpiringLots returns lots expiring on or before the horizon.
func (r *LedgerRepo) ExpiringLots(ctx context.Context, tenantID id.ID, horizon time.Time) ([]ledger.PurchaseLot, error) {
	q := r.lotSelect().
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.NotEq{"expiration_date": nil}).
		Where(squirrel.LtOrEq{"expiration_date": horizon}).
		OrderBy("expiration_date ASC", "id ASC")

	return r.selectLots(ctx, q)
}

func (r *LedgerRepo) selectLots(ctx context.Context, q squirrel.SelectBuilder) ([]ledger.PurchaseLot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []ledger.PurchaseLot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}
	return lots, nil
}

// InsertUsage appends a usage event.
func (r *LedgerRepo) InsertUsage(ctx context.Context, ev *ledger.UsageEvent) error {
	q := r.builder().
		Insert(usageTable).
		SetMap(postgres.StructToMap(ev))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// InsertUsageBatch appends usage events over the COPY protocol. Requires
// an active transaction.
func (r *LedgerRepo) InsertUsageBatch(ctx context.Context, events []ledger.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	columns := []string{
		"id", "tenant_id", "lot_id", "quantity", "used_at",
		"reason", "notes", "created_at",
	}
	rows := make([][]any, 0, len(events))
	for i := range events {
		ev := &events[i]
		rows = append(rows, []any{
			ev.ID, ev.TenantID, ev.LotID, ev.Quantity, ev.UsedAt,
			ev.Reason, ev.Notes, ev.CreatedAt,
		})
	}

	inserter := postgres.NewBatchInserter(r.txManager)
	if _, err := inserter.CopyFromSlice(ctx, usageTable, columns, rows); err != nil {
		return fmt.Errorf("copy usage events: %w", err)
	}
	return nil
}

// InsertSpoilage appends a spoilage event.
func (r *LedgerRepo) InsertSpoilage(ctx context.Context, ev *ledger.SpoilageEvent) error {
	q := r.builder().
		Insert(spoilageTable).
		SetMap(postgres.StructToMap(ev))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert spoilage event: %w", err)
	}
	return nil
}

// ConsumptionByLot returns usage and spoilage sums grouped by lot in two
// grouped queries, regardless of how many lots are asked for.
func (r *LedgerRepo) ConsumptionByLot(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]ledger.LotConsumption, error) {
	result := make(map[id.ID]ledger.LotConsumption)

	usage, err := r.sumByLot(ctx, usageTable, tenantID, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("usage sums: %w", err)
	}
	for lotID, qty := range usage {
		c := result[lotID]
		c.Used = qty
		result[lotID] = c
	}

	spoilage, err := r.sumByLot(ctx, spoilageTable, tenantID, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("spoilage sums: %w", err)
	}
	for lotID, qty := range spoilage {
		c := result[lotID]
		c.Spoiled = qty
		result[lotID] = c
	}

	return result, nil
}

type lotSum struct {
	LotID id.ID           `db:"lot_id"`
	Total decimal.Decimal `db:"total"`
}

func (r *LedgerRepo) sumByLot(ctx context.Context, table string, tenantID id.ID, lotIDs []id.ID) (map[id.ID]decimal.Decimal, error) {
	q := r.builder().
		Select("lot_id", "COALESCE(SUM(quantity), 0) AS total").
		From(table).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		GroupBy("lot_id")

	if len(lotIDs) > 0 {
		q = q.Where(squirrel.Eq{"lot_id": lotIDs})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sums []lotSum
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sums, sql, args...); err != nil {
		return nil, fmt.Errorf("select sums: %w", err)
	}

	result := make(map[id.ID]decimal.Decimal, len(sums))
	for _, s := range sums {
		result[s.LotID] = s.Total
	}
	return result, nil
}
