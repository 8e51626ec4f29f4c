package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/ingredient"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
)

type fakeLedgerReader struct {
	lots        []ledger.PurchaseLot
	consumption map[id.ID]ledger.LotConsumption
}

func (f *fakeLedgerReader) GetLot(ctx context.Context, tenantID, lotID id.ID) (*ledger.PurchaseLot, error) {
	for i := range f.lots {
		if f.lots[i].ID == lotID {
			return &f.lots[i], nil
		}
	}
	return nil, errNotFound(lotID)
}

func (f *fakeLedgerReader) GetLots(ctx context.Context, tenantID id.ID, lotIDs []id.ID) ([]ledger.PurchaseLot, error) {
	want := make(map[id.ID]bool, len(lotIDs))
	for _, lid := range lotIDs {
		want[lid] = true
	}
	var out []ledger.PurchaseLot
	for i := range f.lots {
		if want[f.lots[i].ID] {
			out = append(out, f.lots[i])
		}
	}
	return out, nil
}

func (f *fakeLedgerReader) ListLots(ctx context.Context, tenantID id.ID, filter ledger.LotFilter) ([]ledger.PurchaseLot, error) {
	return f.lots, nil
}

func (f *fakeLedgerReader) ConsumptionByLot(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]ledger.LotConsumption, error) {
	return f.consumption, nil
}

func (f *fakeLedgerReader) ExpiringLots(ctx context.Context, tenantID id.ID, horizon time.Time) ([]ledger.PurchaseLot, error) {
	var out []ledger.PurchaseLot
	for i := range f.lots {
		lot := &f.lots[i]
		if lot.ExpirationDate != nil && !lot.ExpirationDate.After(horizon) {
			out = append(out, *lot)
		}
	}
	return out, nil
}

type fakeIngredientLister struct {
	items []*ingredient.Ingredient
}

func (f *fakeIngredientLister) ListAll(ctx context.Context, tenantID id.ID) ([]*ingredient.Ingredient, error) {
	return f.items, nil
}

func errNotFound(lotID id.ID) error {
	return &notFoundErr{id: lotID}
}

type notFoundErr struct{ id id.ID }

func (e *notFoundErr) Error() string { return "lot not found: " + e.id.String() }

func testIngredient(tenantID id.ID, name string, threshold decimal.Decimal) *ingredient.Ingredient {
	ing := ingredient.New(tenantID, name, id.New(), id.New())
	ing.RestockThreshold = threshold
	return ing
}

func testLot(tenantID, ingredientID id.ID, qty string, purchased time.Time) ledger.PurchaseLot {
	lot := ledger.NewPurchaseLot(tenantID, ingredientID, id.New(), id.New(), d(qty), d("10"), purchased)
	return *lot
}

func TestRemainingQuantity_SubtractsUsageAndSpoilage(t *testing.T) {
	tenantID := id.New()
	ingID := id.New()
	lot := testLot(tenantID, ingID, "10", day(1))

	reader := &fakeLedgerReader{
		lots: []ledger.PurchaseLot{lot},
		consumption: map[id.ID]ledger.LotConsumption{
			lot.ID: {Used: d("3"), Spoiled: d("2.5")},
		},
	}
	calc := NewCalculator(reader, &fakeIngredientLister{})

	remaining, err := calc.RemainingQuantity(context.Background(), tenantID, lot.ID)

	require.NoError(t, err)
	assert.True(t, remaining.Equal(d("4.5")), "remaining = %s", remaining)
}

func TestRemainingQuantity_FlooredAtZero(t *testing.T) {
	tenantID := id.New()
	lot := testLot(tenantID, id.New(), "10", day(1))

	reader := &fakeLedgerReader{
		lots: []ledger.PurchaseLot{lot},
		consumption: map[id.ID]ledger.LotConsumption{
			lot.ID: {Used: d("7"), Spoiled: d("5")},
		},
	}
	calc := NewCalculator(reader, &fakeIngredientLister{})

	remaining, err := calc.RemainingQuantity(context.Background(), tenantID, lot.ID)

	require.NoError(t, err)
	assert.True(t, remaining.IsZero(), "remaining = %s", remaining)
}

func TestRemainingBatch_Empty(t *testing.T) {
	calc := NewCalculator(&fakeLedgerReader{}, &fakeIngredientLister{})

	result, err := calc.RemainingBatch(context.Background(), id.New(), nil)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRemainingBatch(t *testing.T) {
	tenantID := id.New()
	lotA := testLot(tenantID, id.New(), "10", day(1))
	lotB := testLot(tenantID, id.New(), "20", day(2))

	reader := &fakeLedgerReader{
		lots: []ledger.PurchaseLot{lotA, lotB},
		consumption: map[id.ID]ledger.LotConsumption{
			lotA.ID: {Used: d("4")},
		},
	}
	calc := NewCalculator(reader, &fakeIngredientLister{})

	result, err := calc.RemainingBatch(context.Background(), tenantID, []id.ID{lotA.ID, lotB.ID})

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.True(t, result[lotA.ID].Equal(d("6")))
	assert.True(t, result[lotB.ID].Equal(d("20")))
}

func TestStockByIngredient_GroupsByLocation(t *testing.T) {
	tenantID := id.New()
	ing := testIngredient(tenantID, "Flour", d("5"))

	locA := id.New()
	locB := id.New()
	lotA := testLot(tenantID, ing.ID, "10", day(1))
	lotA.LocationID = locA
	lotB := testLot(tenantID, ing.ID, "8", day(2))
	lotB.LocationID = locB
	lotC := testLot(tenantID, ing.ID, "2", day(3))
	lotC.LocationID = locA

	reader := &fakeLedgerReader{
		lots: []ledger.PurchaseLot{lotA, lotB, lotC},
		consumption: map[id.ID]ledger.LotConsumption{
			lotA.ID: {Used: d("4")},
		},
	}
	calc := NewCalculator(reader, &fakeIngredientLister{items: []*ingredient.Ingredient{ing}})

	result, err := calc.StockByIngredient(context.Background(), tenantID)

	require.NoError(t, err)
	require.Len(t, result, 1)
	item := result[0]
	assert.Equal(t, ing.ID, item.IngredientID)
	assert.True(t, item.TotalRemaining.Equal(d("16")))
	require.Len(t, item.Locations, 2)
	assert.Equal(t, locA, item.Locations[0].LocationID)
	assert.True(t, item.Locations[0].Remaining.Equal(d("8")))
	assert.Equal(t, locB, item.Locations[1].LocationID)
	assert.True(t, item.Locations[1].Remaining.Equal(d("8")))
}

func TestStockByIngredient_NoLotsReportsZero(t *testing.T) {
	tenantID := id.New()
	ing := testIngredient(tenantID, "Saffron", d("1"))

	calc := NewCalculator(&fakeLedgerReader{}, &fakeIngredientLister{items: []*ingredient.Ingredient{ing}})

	result, err := calc.StockByIngredient(context.Background(), tenantID)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].TotalRemaining.IsZero())
	assert.Empty(t, result[0].Locations)
}

func TestLowStock(t *testing.T) {
	tenantID := id.New()
	low := testIngredient(tenantID, "Butter", d("10"))
	fine := testIngredient(tenantID, "Salt", d("1"))

	lotLow := testLot(tenantID, low.ID, "4", day(1))
	lotFine := testLot(tenantID, fine.ID, "50", day(1))

	reader := &fakeLedgerReader{
		lots:        []ledger.PurchaseLot{lotLow, lotFine},
		consumption: map[id.ID]ledger.LotConsumption{},
	}
	calc := NewCalculator(reader, &fakeIngredientLister{items: []*ingredient.Ingredient{low, fine}})

	items, err := calc.LowStock(context.Background(), tenantID)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].IngredientID)
	assert.True(t, items[0].Remaining.Equal(d("4")))
	// suggested order tops stock up to twice the threshold
	assert.True(t, items[0].SuggestedOrder.Equal(d("16")), "suggested = %s", items[0].SuggestedOrder)
}

func TestLowStock_ZeroThresholdNeverLow(t *testing.T) {
	tenantID := id.New()
	ing := testIngredient(tenantID, "Water", decimal.Zero)

	calc := NewCalculator(&fakeLedgerReader{}, &fakeIngredientLister{items: []*ingredient.Ingredient{ing}})

	items, err := calc.LowStock(context.Background(), tenantID)

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExpiringStock_SkipsDepletedLots(t *testing.T) {
	tenantID := id.New()
	ingID := id.New()

	soon := time.Now().UTC().Add(48 * time.Hour)
	withStock := testLot(tenantID, ingID, "10", day(1))
	withStock.ExpirationDate = &soon
	depleted := testLot(tenantID, ingID, "5", day(2))
	depleted.ExpirationDate = &soon

	reader := &fakeLedgerReader{
		lots: []ledger.PurchaseLot{withStock, depleted},
		consumption: map[id.ID]ledger.LotConsumption{
			depleted.ID: {Used: d("5")},
		},
	}
	calc := NewCalculator(reader, &fakeIngredientLister{})

	result, err := calc.ExpiringStock(context.Background(), tenantID, 7*24*time.Hour)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, withStock.ID, result[0].Lot.ID)
	assert.True(t, result[0].Remaining.Equal(d("10")))
}
