package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/types"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/ingredient"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
)

// LedgerReader is the slice of the ledger repository the calculator needs.
type LedgerReader interface {
	GetLot(ctx context.Context, tenantID, lotID id.ID) (*ledger.PurchaseLot, error)
	GetLots(ctx context.Context, tenantID id.ID, lotIDs []id.ID) ([]ledger.PurchaseLot, error)
	ListLots(ctx context.Context, tenantID id.ID, filter ledger.LotFilter) ([]ledger.PurchaseLot, error)
	ConsumptionByLot(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]ledger.LotConsumption, error)
	ExpiringLots(ctx context.Context, tenantID id.ID, horizon time.Time) ([]ledger.PurchaseLot, error)
}

// IngredientLister lists the tenant's ingredients for stock summaries.
type IngredientLister interface {
	ListAll(ctx context.Context, tenantID id.ID) ([]*ingredient.Ingredient, error)
}

// LocationStock is the remaining quantity of an ingredient in one storage
// location.
type LocationStock struct {
	LocationID id.ID           `json:"locationId"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// IngredientStock aggregates remaining quantity across all lots of an
// ingredient, broken out by storage location.
type IngredientStock struct {
	IngredientID     id.ID           `json:"ingredientId"`
	IngredientName   string          `json:"ingredientName"`
	UnitID           id.ID           `json:"unitId"`
	RestockThreshold decimal.Decimal `json:"restockThreshold"`
	TotalRemaining   decimal.Decimal `json:"totalRemaining"`
	Locations        []LocationStock `json:"locations"`
}

// LowStock reports whether remaining stock sits below the restock threshold.
func (s IngredientStock) LowStock() bool {
	return s.TotalRemaining.LessThan(s.RestockThreshold)
}

// LowStockItem is a shopping-list row for an ingredient below threshold.
type LowStockItem struct {
	IngredientID     id.ID           `json:"ingredientId"`
	IngredientName   string          `json:"ingredientName"`
	UnitID           id.ID           `json:"unitId"`
	Remaining        decimal.Decimal `json:"remaining"`
	RestockThreshold decimal.Decimal `json:"restockThreshold"`
	SuggestedOrder   decimal.Decimal `json:"suggestedOrder"`
}

// ExpiringLot is a lot nearing expiration with stock still on hand.
type ExpiringLot struct {
	Lot       ledger.PurchaseLot `json:"lot"`
	Remaining decimal.Decimal    `json:"remaining"`
}

// Calculator derives remaining stock from ledger state at call time.
// It is a pure read: no caching, every call re-aggregates.
type Calculator struct {
	reader      LedgerReader
	ingredients IngredientLister
}

// NewCalculator creates a stock calculator.
func NewCalculator(reader LedgerReader, ingredients IngredientLister) *Calculator {
	return &Calculator{reader: reader, ingredients: ingredients}
}

// RemainingQuantity returns the lot's remaining quantity, rounded to two
// decimal places for reporting. Internally the subtraction runs at full
// precision; the result is floored at zero.
func (c *Calculator) RemainingQuantity(ctx context.Context, tenantID, lotID id.ID) (decimal.Decimal, error) {
	lot, err := c.reader.GetLot(ctx, tenantID, lotID)
	if err != nil {
		return decimal.Zero, err
	}

	consumption, err := c.reader.ConsumptionByLot(ctx, tenantID, []id.ID{lotID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("consumption sums: %w", err)
	}

	return types.Round2(lot.Remaining(consumption[lotID])), nil
}

// RemainingBatch computes remaining quantity for many lots in a fixed
// number of round-trips: one lot fetch plus one grouped-sum query set,
// never one query per lot.
func (c *Calculator) RemainingBatch(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]decimal.Decimal, error) {
	if len(lotIDs) == 0 {
		return map[id.ID]decimal.Decimal{}, nil
	}

	lots, err := c.reader.GetLots(ctx, tenantID, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch lots: %w", err)
	}

	consumption, err := c.reader.ConsumptionByLot(ctx, tenantID, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("consumption sums: %w", err)
	}

	result := make(map[id.ID]decimal.Decimal, len(lots))
	for i := range lots {
		lot := &lots[i]
		result[lot.ID] = types.Round2(lot.Remaining(consumption[lot.ID]))
	}
	return result, nil
}

// StockByIngredient aggregates remaining quantity for every ingredient of
// the tenant, broken out by storage location. Ingredients with zero lots
// report zero stock and an empty breakdown.
func (c *Calculator) StockByIngredient(ctx context.Context, tenantID id.ID) ([]IngredientStock, error) {
	ingredients, err := c.ingredients.ListAll(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	lots, err := c.reader.ListLots(ctx, tenantID, ledger.LotFilter{})
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}

	consumption, err := c.reader.ConsumptionByLot(ctx, tenantID, nil)
	if err != nil {
		return nil, fmt.Errorf("consumption sums: %w", err)
	}

	type locKey struct {
		ingredient id.ID
		location   id.ID
	}
	totals := make(map[id.ID]decimal.Decimal)
	byLocation := make(map[locKey]decimal.Decimal)
	locationOrder := make(map[id.ID][]id.ID)

	for i := range lots {
		lot := &lots[i]
		remaining := lot.Remaining(consumption[lot.ID])

		totals[lot.IngredientID] = totals[lot.IngredientID].Add(remaining)

		key := locKey{ingredient: lot.IngredientID, location: lot.LocationID}
		if _, seen := byLocation[key]; !seen {
			locationOrder[lot.IngredientID] = append(locationOrder[lot.IngredientID], lot.LocationID)
		}
		byLocation[key] = byLocation[key].Add(remaining)
	}

	result := make([]IngredientStock, 0, len(ingredients))
	for _, ing := range ingredients {
		item := IngredientStock{
			IngredientID:     ing.ID,
			IngredientName:   ing.Name,
			UnitID:           ing.UnitID,
			RestockThreshold: ing.RestockThreshold,
			TotalRemaining:   types.Round2(totals[ing.ID]),
			Locations:        []LocationStock{},
		}
		for _, locID := range locationOrder[ing.ID] {
			item.Locations = append(item.Locations, LocationStock{
				LocationID: locID,
				Remaining:  types.Round2(byLocation[locKey{ingredient: ing.ID, location: locID}]),
			})
		}
		result = append(result, item)
	}
	return result, nil
}

// LowStock returns the shopping list: ingredients whose remaining stock is
// below their restock threshold, with a suggested reorder quantity.
func (c *Calculator) LowStock(ctx context.Context, tenantID id.ID) ([]LowStockItem, error) {
	summary, err := c.StockByIngredient(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var items []LowStockItem
	for _, s := range summary {
		if !s.LowStock() {
			continue
		}
		suggested := s.RestockThreshold.Mul(decimal.NewFromInt(2)).Sub(s.TotalRemaining)
		items = append(items, LowStockItem{
			IngredientID:     s.IngredientID,
			IngredientName:   s.IngredientName,
			UnitID:           s.UnitID,
			Remaining:        s.TotalRemaining,
			RestockThreshold: s.RestockThreshold,
			SuggestedOrder:   types.Round2(suggested),
		})
	}
	return items, nil
}

// ExpiringStock returns lots expiring within the horizon that still have
// remaining quantity.
func (c *Calculator) ExpiringStock(ctx context.Context, tenantID id.ID, within time.Duration) ([]ExpiringLot, error) {
	horizon := time.Now().UTC().Add(within)
	lots, err := c.reader.ExpiringLots(ctx, tenantID, horizon)
	if err != nil {
		return nil, fmt.Errorf("expiring lots: %w", err)
	}
	if len(lots) == 0 {
		return nil, nil
	}

	lotIDs := make([]id.ID, len(lots))
	for i := range lots {
		lotIDs[i] = lots[i].ID
	}
	consumption, err := c.reader.ConsumptionByLot(ctx, tenantID, lotIDs)
	if err != nil {
		return nil, fmt.Errorf("consumption sums: %w", err)
	}

	var result []ExpiringLot
	for i := range lots {
		remaining := lots[i].Remaining(consumption[lots[i].ID])
		if !remaining.IsPositive() {
			continue
		}
		result = append(result, ExpiringLot{
			Lot:       lots[i],
			Remaining: types.Round2(remaining),
		})
	}
	return result, nil
}
