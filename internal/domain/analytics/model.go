package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

// LotFact is the analytics read model of one purchase lot: the lot joined
// with its directory names, restock threshold and consumption sums in a
// single query, so statistics never fetch one lot at a time.
type LotFact struct {
	LotID            id.ID           `db:"lot_id"`
	IngredientID     id.ID           `db:"ingredient_id"`
	IngredientName   string          `db:"ingredient_name"`
	RestockThreshold decimal.Decimal `db:"restock_threshold"`
	SupplierID       id.ID           `db:"supplier_id"`
	SupplierName     string          `db:"supplier_name"`
	CategoryName     string          `db:"category_name"`
	Quantity         decimal.Decimal `db:"quantity"`
	PurchasePrice    decimal.Decimal `db:"purchase_price"`
	PurchaseDate     time.Time       `db:"purchase_date"`
	UsedQty          decimal.Decimal `db:"used_qty"`
	SpoiledQty       decimal.Decimal `db:"spoiled_qty"`
}

// UnitPrice returns price per unit, zero when the lot has no usable price.
func (f *LotFact) UnitPrice() decimal.Decimal {
	if !f.Quantity.IsPositive() {
		return decimal.Zero
	}
	return f.PurchasePrice.Div(f.Quantity)
}

// Remaining returns quantity on hand, floored at zero.
func (f *LotFact) Remaining() decimal.Decimal {
	r := f.Quantity.Sub(f.UsedQty).Sub(f.SpoiledQty)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IngredientStat is one ingredient's slice of the overall statistics.
type IngredientStat struct {
	IngredientID id.ID           `json:"ingredientId"`
	Name         string          `json:"name"`
	Remaining    decimal.Decimal `json:"remaining"`
	StockValue   decimal.Decimal `json:"stockValue"`
	LowStock     bool            `json:"lowStock"`
}

// SupplierStat aggregates the lots bought from one supplier.
type SupplierStat struct {
	SupplierID   id.ID           `json:"supplierId"`
	Name         string          `json:"name"`
	AvgUnitPrice decimal.Decimal `json:"avgUnitPrice"`
	TotalSpend   decimal.Decimal `json:"totalSpend"`
	LotCount     int             `json:"lotCount"`
}

// CategoryStat is the remaining-stock share of one ingredient category.
type CategoryStat struct {
	Name      string          `json:"name"`
	Remaining decimal.Decimal `json:"remaining"`
}

// OverallStatistics summarizes a tenant's whole inventory position:
// ledger totals plus per-ingredient, per-supplier and per-category
// breakdowns, all accumulated in one pass over the lot facts.
type OverallStatistics struct {
	TenantID id.ID `json:"-"`

	TotalStockValue   decimal.Decimal `json:"totalStockValue"`
	TotalPurchaseCost decimal.Decimal `json:"totalPurchaseCost"`
	TotalUsageCost    decimal.Decimal `json:"totalUsageCost"`
	TotalSpoilageCost decimal.Decimal `json:"totalSpoilageCost"`
	LotCount          int             `json:"lotCount"`
	IngredientCount   int             `json:"ingredientCount"`
	LowStockCount     int             `json:"lowStockCount"`

	Ingredients []IngredientStat `json:"ingredients"`
	Suppliers   []SupplierStat   `json:"suppliers"`
	Categories  []CategoryStat   `json:"categories"`

	ComputedAt time.Time `json:"computedAt"`
}

// DailyValue is one grouped ledger value for a calendar date, as returned
// by the repository's date-bucketed queries.
type DailyValue struct {
	Date  time.Time       `db:"day"`
	Value decimal.Decimal `db:"value"`
}

// ValueTrendPoint compares purchased value against consumed value (usage
// plus spoilage at lot unit price) on one calendar date.
type ValueTrendPoint struct {
	Date           time.Time       `json:"date"`
	PurchasedValue decimal.Decimal `json:"purchasedValue"`
	ConsumedValue  decimal.Decimal `json:"consumedValue"`
}

// TrendPoint is one dated value of a time series.
type TrendPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// IngredientAnalytics is the precomputed per-ingredient view: price and
// stock-value history over the trailing window plus current figures.
// Stored as one row per (tenant, ingredient) and upserted on recompute.
type IngredientAnalytics struct {
	TenantID     id.ID `db:"tenant_id" json:"-"`
	IngredientID id.ID `db:"ingredient_id" json:"ingredientId"`

	PriceTrend      []TrendPoint `db:"price_trend" json:"priceTrend"`
	StockValueTrend []TrendPoint `db:"stock_value_trend" json:"stockValueTrend"`

	AvgUnitPrice      decimal.Decimal `db:"avg_unit_price" json:"avgUnitPrice"`
	CurrentRemaining  decimal.Decimal `db:"current_remaining" json:"currentRemaining"`
	CurrentStockValue decimal.Decimal `db:"current_stock_value" json:"currentStockValue"`

	ComputedAt time.Time `db:"computed_at" json:"computedAt"`
}

// Stale reports whether the row is older than the freshness window.
func (a *IngredientAnalytics) Stale(maxAge time.Duration) bool {
	return time.Since(a.ComputedAt) > maxAge
}

// DailySnapshot is one day's inventory summary, written once per day per
// tenant. Re-running a snapshot for the same day overwrites the same row.
type DailySnapshot struct {
	TenantID id.ID     `db:"tenant_id" json:"-"`
	Date     time.Time `db:"snapshot_date" json:"date"`

	TotalStockValue   decimal.Decimal `db:"total_stock_value" json:"totalStockValue"`
	TotalPurchaseCost decimal.Decimal `db:"total_purchase_cost" json:"totalPurchaseCost"`
	TotalUsageCost    decimal.Decimal `db:"total_usage_cost" json:"totalUsageCost"`
	TotalSpoilageCost decimal.Decimal `db:"total_spoilage_cost" json:"totalSpoilageCost"`
	LotCount          int             `db:"lot_count" json:"lotCount"`
	IngredientCount   int             `db:"ingredient_count" json:"ingredientCount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StaleEntry identifies an analytics row due for recomputation.
type StaleEntry struct {
	TenantID     id.ID `db:"tenant_id"`
	IngredientID id.ID `db:"ingredient_id"`
}
