package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/types"
	"github.com/ItsEgzix/Tasto-backend/pkg/logger"
)

const (
	// TrendWindow is how far back trend series reach.
	TrendWindow = 90 * 24 * time.Hour

	// syntheticOffset is how far before a lone trend point the synthetic
	// anchor point is placed, so the chart renders a flat line instead of
	// a single dot.
	syntheticOffset = 30 * 24 * time.Hour

	// Freshness is how long a stored analytics row is served without
	// triggering recomputation.
	Freshness = time.Hour
)

// Dispatcher enqueues asynchronous recomputation.
type Dispatcher interface {
	Enqueue(tenantID, ingredientID id.ID)
}

// Service computes and serves inventory analytics. Reads are served from
// precomputed rows; stale rows are returned as-is while a recompute is
// queued in the background.
type Service struct {
	repo       Repository
	dispatcher Dispatcher
}

// NewService creates an analytics service. The dispatcher is attached
// afterwards because it wraps this service's recompute method.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetDispatcher attaches the background recompute queue.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// CalculateOverallStatistics aggregates the tenant's whole ledger in a
// single pass over one joined query: totals, low-stock count and the
// per-ingredient, per-supplier and per-category breakdowns. Breakdown
// entries keep first-seen order, which follows the purchase-date order
// of the underlying query.
func (s *Service) CalculateOverallStatistics(ctx context.Context, tenantID id.ID) (*OverallStatistics, error) {
	facts, err := s.repo.LotFacts(ctx, tenantID, nil)
	if err != nil {
		return nil, fmt.Errorf("lot facts: %w", err)
	}

	stats := &OverallStatistics{
		TenantID:   tenantID,
		ComputedAt: time.Now().UTC(),
	}

	type ingredientAcc struct {
		stat      IngredientStat
		threshold decimal.Decimal
	}
	type supplierAcc struct {
		stat     SupplierStat
		priceSum decimal.Decimal
	}
	ingredientsByID := make(map[id.ID]*ingredientAcc)
	suppliersByID := make(map[id.ID]*supplierAcc)
	categoriesByName := make(map[string]*CategoryStat)
	var ingredientOrder []id.ID
	var supplierOrder []id.ID
	var categoryOrder []string

	stockValue := decimal.Zero
	purchaseCost := decimal.Zero
	usageCost := decimal.Zero
	spoilageCost := decimal.Zero

	for i := range facts {
		f := &facts[i]
		unitPrice := f.UnitPrice()
		remaining := f.Remaining()
		value := remaining.Mul(unitPrice)

		stockValue = stockValue.Add(value)
		purchaseCost = purchaseCost.Add(f.PurchasePrice)
		usageCost = usageCost.Add(f.UsedQty.Mul(unitPrice))
		spoilageCost = spoilageCost.Add(f.SpoiledQty.Mul(unitPrice))

		ing, ok := ingredientsByID[f.IngredientID]
		if !ok {
			ing = &ingredientAcc{
				stat: IngredientStat{
					IngredientID: f.IngredientID,
					Name:         f.IngredientName,
				},
				threshold: f.RestockThreshold,
			}
			ingredientsByID[f.IngredientID] = ing
			ingredientOrder = append(ingredientOrder, f.IngredientID)
		}
		ing.stat.Remaining = ing.stat.Remaining.Add(remaining)
		ing.stat.StockValue = ing.stat.StockValue.Add(value)

		if !id.IsNil(f.SupplierID) {
			sup, ok := suppliersByID[f.SupplierID]
			if !ok {
				sup = &supplierAcc{
					stat: SupplierStat{
						SupplierID: f.SupplierID,
						Name:       f.SupplierName,
					},
				}
				suppliersByID[f.SupplierID] = sup
				supplierOrder = append(supplierOrder, f.SupplierID)
			}
			sup.stat.TotalSpend = sup.stat.TotalSpend.Add(f.PurchasePrice)
			sup.priceSum = sup.priceSum.Add(unitPrice)
			sup.stat.LotCount++
		}

		if f.CategoryName != "" {
			cat, ok := categoriesByName[f.CategoryName]
			if !ok {
				cat = &CategoryStat{Name: f.CategoryName}
				categoriesByName[f.CategoryName] = cat
				categoryOrder = append(categoryOrder, f.CategoryName)
			}
			cat.Remaining = cat.Remaining.Add(remaining)
		}
	}

	for _, ingID := range ingredientOrder {
		acc := ingredientsByID[ingID]
		if acc.stat.Remaining.LessThan(acc.threshold) {
			acc.stat.LowStock = true
			stats.LowStockCount++
		}
		acc.stat.Remaining = types.Round2(acc.stat.Remaining)
		acc.stat.StockValue = types.Round2(acc.stat.StockValue)
		stats.Ingredients = append(stats.Ingredients, acc.stat)
	}
	for _, supID := range supplierOrder {
		acc := suppliersByID[supID]
		acc.stat.AvgUnitPrice = types.Round2(acc.priceSum.Div(decimal.NewFromInt(int64(acc.stat.LotCount))))
		acc.stat.TotalSpend = types.Round2(acc.stat.TotalSpend)
		stats.Suppliers = append(stats.Suppliers, acc.stat)
	}
	for _, name := range categoryOrder {
		cat := categoriesByName[name]
		cat.Remaining = types.Round2(cat.Remaining)
		stats.Categories = append(stats.Categories, *cat)
	}

	stats.TotalStockValue = types.Round2(stockValue)
	stats.TotalPurchaseCost = types.Round2(purchaseCost)
	stats.TotalUsageCost = types.Round2(usageCost)
	stats.TotalSpoilageCost = types.Round2(spoilageCost)
	stats.LotCount = len(facts)
	stats.IngredientCount = len(ingredientOrder)
	return stats, nil
}

// ValueTrend compares daily purchased value against consumed value over
// the date range. Built from two date-grouped queries on demand, never
// cached.
func (s *Service) ValueTrend(ctx context.Context, tenantID id.ID, from, to time.Time) ([]ValueTrendPoint, error) {
	if to.Before(from) {
		return nil, apperror.NewValidation("toDate must not be before fromDate")
	}

	purchased, err := s.repo.DailyPurchaseValues(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily purchase values: %w", err)
	}
	consumed, err := s.repo.DailyConsumptionValues(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily consumption values: %w", err)
	}

	byDay := make(map[time.Time]*ValueTrendPoint)
	var days []time.Time
	point := func(date time.Time) *ValueTrendPoint {
		day := date.UTC().Truncate(24 * time.Hour)
		p, ok := byDay[day]
		if !ok {
			p = &ValueTrendPoint{Date: day}
			byDay[day] = p
			days = append(days, day)
		}
		return p
	}

	for _, v := range purchased {
		p := point(v.Date)
		p.PurchasedValue = p.PurchasedValue.Add(v.Value)
	}
	for _, v := range consumed {
		p := point(v.Date)
		p.ConsumedValue = p.ConsumedValue.Add(v.Value)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]ValueTrendPoint, 0, len(days))
	for _, day := range days {
		p := byDay[day]
		out = append(out, ValueTrendPoint{
			Date:           day,
			PurchasedValue: types.Round2(p.PurchasedValue),
			ConsumedValue:  types.Round2(p.ConsumedValue),
		})
	}
	return out, nil
}

// CalculateIngredientAnalytics recomputes the per-ingredient row from the
// ledger: trailing-window price and stock-value trends plus current
// figures. The result is not persisted; see RecomputeIngredient.
func (s *Service) CalculateIngredientAnalytics(ctx context.Context, tenantID, ingredientID id.ID) (*IngredientAnalytics, error) {
	facts, err := s.repo.LotFacts(ctx, tenantID, []id.ID{ingredientID})
	if err != nil {
		return nil, fmt.Errorf("lot facts: %w", err)
	}

	now := time.Now().UTC()
	row := &IngredientAnalytics{
		TenantID:     tenantID,
		IngredientID: ingredientID,
		ComputedAt:   now,
	}

	sort.SliceStable(facts, func(i, j int) bool {
		return facts[i].PurchaseDate.Before(facts[j].PurchaseDate)
	})

	windowStart := now.Add(-TrendWindow)
	remaining := decimal.Zero
	value := decimal.Zero
	priceSum := decimal.Zero
	pricedLots := 0
	runningValue := decimal.Zero

	// Price points are averaged per calendar day; two lots bought the
	// same day make one point, not two.
	type dayPrice struct {
		sum  decimal.Decimal
		lots int
	}
	pricesByDay := make(map[time.Time]*dayPrice)
	var priceDays []time.Time

	for i := range facts {
		f := &facts[i]
		unitPrice := f.UnitPrice()

		remaining = remaining.Add(f.Remaining())
		value = value.Add(f.Remaining().Mul(unitPrice))
		runningValue = runningValue.Add(f.Remaining().Mul(unitPrice))
		if f.Quantity.IsPositive() {
			priceSum = priceSum.Add(unitPrice)
			pricedLots++
		}

		if f.PurchaseDate.Before(windowStart) {
			continue
		}
		if f.Quantity.IsPositive() {
			day := f.PurchaseDate.UTC().Truncate(24 * time.Hour)
			acc, ok := pricesByDay[day]
			if !ok {
				acc = &dayPrice{}
				pricesByDay[day] = acc
				priceDays = append(priceDays, day)
			}
			acc.sum = acc.sum.Add(unitPrice)
			acc.lots++
		}
		row.StockValueTrend = append(row.StockValueTrend, TrendPoint{
			Date:  f.PurchaseDate,
			Value: types.Round2(runningValue),
		})
	}

	// priceDays follows the chronological fact order
	for _, day := range priceDays {
		acc := pricesByDay[day]
		row.PriceTrend = append(row.PriceTrend, TrendPoint{
			Date:  day,
			Value: types.Round2(acc.sum.Div(decimal.NewFromInt(int64(acc.lots)))),
		})
	}

	row.PriceTrend = anchorSinglePoint(row.PriceTrend, windowStart)
	row.StockValueTrend = anchorSinglePoint(row.StockValueTrend, windowStart)

	row.CurrentRemaining = types.Round2(remaining)
	row.CurrentStockValue = types.Round2(value)
	if pricedLots > 0 {
		row.AvgUnitPrice = types.Round2(priceSum.Div(decimal.NewFromInt(int64(pricedLots))))
	}
	return row, nil
}

// anchorSinglePoint extends a one-point series with a zero-value point
// placed earlier, so the chart draws a line instead of a dot. Skipped
// when the synthetic date would fall outside the trend window.
func anchorSinglePoint(series []TrendPoint, windowStart time.Time) []TrendPoint {
	if len(series) != 1 {
		return series
	}
	anchorDate := series[0].Date.Add(-syntheticOffset)
	if anchorDate.Before(windowStart) {
		return series
	}
	anchor := TrendPoint{
		Date:  anchorDate,
		Value: decimal.Zero,
	}
	return []TrendPoint{anchor, series[0]}
}

// RecomputeIngredient recalculates and stores the analytics row. Called
// from the dispatcher worker and the background refresher.
func (s *Service) RecomputeIngredient(ctx context.Context, tenantID, ingredientID id.ID) error {
	row, err := s.CalculateIngredientAnalytics(ctx, tenantID, ingredientID)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertIngredientAnalytics(ctx, row); err != nil {
		return fmt.Errorf("upsert analytics: %w", err)
	}
	return nil
}

// GetIngredientAnalytics serves the stored row. A missing row is computed
// synchronously; a stale row is returned as-is with a recompute queued.
func (s *Service) GetIngredientAnalytics(ctx context.Context, tenantID, ingredientID id.ID) (*IngredientAnalytics, error) {
	row, err := s.repo.GetIngredientAnalytics(ctx, tenantID, ingredientID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return nil, err
		}
		row, err = s.CalculateIngredientAnalytics(ctx, tenantID, ingredientID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpsertIngredientAnalytics(ctx, row); err != nil {
			logger.Warn(ctx, "failed to store computed analytics",
				"ingredient_id", ingredientID, "error", err)
		}
		return row, nil
	}

	if row.Stale(Freshness) && s.dispatcher != nil {
		s.dispatcher.Enqueue(tenantID, ingredientID)
	}
	return row, nil
}

// SaveDailySnapshot computes and stores the snapshot for the given day.
// Rerunning for the same day overwrites the earlier snapshot.
func (s *Service) SaveDailySnapshot(ctx context.Context, tenantID id.ID, day time.Time) (*DailySnapshot, error) {
	stats, err := s.CalculateOverallStatistics(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	snap := &DailySnapshot{
		TenantID:          tenantID,
		Date:              day.UTC().Truncate(24 * time.Hour),
		TotalStockValue:   stats.TotalStockValue,
		TotalPurchaseCost: stats.TotalPurchaseCost,
		TotalUsageCost:    stats.TotalUsageCost,
		TotalSpoilageCost: stats.TotalSpoilageCost,
		LotCount:          stats.LotCount,
		IngredientCount:   stats.IngredientCount,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.UpsertDailySnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns stored daily snapshots in the date range.
func (s *Service) ListSnapshots(ctx context.Context, tenantID id.ID, from, to time.Time) ([]DailySnapshot, error) {
	return s.repo.ListSnapshots(ctx, tenantID, from, to)
}

// RefreshStale recomputes analytics rows older than the freshness window.
// Used by the background worker; errors on individual rows are logged and
// do not stop the batch.
func (s *Service) RefreshStale(ctx context.Context, limit int) (int, error) {
	entries, err := s.repo.ListStale(ctx, time.Now().UTC().Add(-Freshness), limit)
	if err != nil {
		return 0, fmt.Errorf("list stale analytics: %w", err)
	}

	refreshed := 0
	for _, e := range entries {
		if err := s.RecomputeIngredient(ctx, e.TenantID, e.IngredientID); err != nil {
			logger.Error(ctx, "stale analytics recompute failed",
				"tenant_id", e.TenantID, "ingredient_id", e.IngredientID, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// SnapshotAllTenants writes today's snapshot for every tenant with ledger
// activity. Per-tenant failures are logged and skipped.
func (s *Service) SnapshotAllTenants(ctx context.Context) (int, error) {
	tenants, err := s.repo.ListTenants(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	written := 0
	today := time.Now().UTC()
	for _, tenantID := range tenants {
		if _, err := s.SaveDailySnapshot(ctx, tenantID, today); err != nil {
			logger.Error(ctx, "daily snapshot failed", "tenant_id", tenantID, "error", err)
			continue
		}
		written++
	}
	return written, nil
}
