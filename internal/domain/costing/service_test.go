package costing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/recipes"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type fakePriceReader struct {
	latest map[id.ID]ledger.PurchaseLot
}

func (f *fakePriceReader) LatestLotPerIngredient(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) (map[id.ID]ledger.PurchaseLot, error) {
	out := make(map[id.ID]ledger.PurchaseLot)
	for _, ingID := range ingredientIDs {
		if lot, ok := f.latest[ingID]; ok {
			out[ingID] = lot
		}
	}
	return out, nil
}

type fakeRecipeReader struct {
	byID map[id.ID]*recipes.Recipe
}

func (f *fakeRecipeReader) GetByID(ctx context.Context, tenantID, recipeID id.ID) (*recipes.Recipe, error) {
	if r, ok := f.byID[recipeID]; ok {
		return r, nil
	}
	return nil, apperror.NewNotFound("recipe", recipeID.String())
}

func (f *fakeRecipeReader) GetMany(ctx context.Context, tenantID id.ID, recipeIDs []id.ID) ([]*recipes.Recipe, error) {
	var out []*recipes.Recipe
	for _, rid := range recipeIDs {
		if r, ok := f.byID[rid]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeReader) List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*recipes.Recipe], error) {
	var items []*recipes.Recipe
	for _, r := range f.byID {
		items = append(items, r)
	}
	return domain.ListResult[*recipes.Recipe]{Items: items, TotalCount: int64(len(items))}, nil
}

type fakeMenuReader struct {
	byID map[id.ID]*recipes.MenuPlan
}

func (f *fakeMenuReader) GetByID(ctx context.Context, tenantID, menuID id.ID) (*recipes.MenuPlan, error) {
	if m, ok := f.byID[menuID]; ok {
		return m, nil
	}
	return nil, apperror.NewNotFound("menu", menuID.String())
}

func pricedLot(tenantID, ingredientID id.ID, qty, price string) ledger.PurchaseLot {
	lot := ledger.NewPurchaseLot(tenantID, ingredientID, id.New(), id.New(), d(qty), d(price), time.Now().UTC())
	return *lot
}

func testRecipe(tenantID id.ID, name string, serves int, lines map[id.ID]string) *recipes.Recipe {
	r := recipes.NewRecipe(tenantID, name, serves)
	for ingID, qty := range lines {
		r.Ingredients = append(r.Ingredients, recipes.RecipeIngredient{
			ID:           id.New(),
			RecipeID:     r.ID,
			IngredientID: ingID,
			Quantity:     d(qty),
		})
	}
	return r
}

func TestRecipeCost_UnitPriceFromLatestLot(t *testing.T) {
	tenantID := id.New()
	flour := id.New()

	// 4 units bought for 20 total, so 5 per unit
	recipe := testRecipe(tenantID, "Bread", 4, map[id.ID]string{flour: "2"})
	svc := NewService(
		&fakePriceReader{latest: map[id.ID]ledger.PurchaseLot{flour: pricedLot(tenantID, flour, "4", "20")}},
		&fakeRecipeReader{byID: map[id.ID]*recipes.Recipe{recipe.ID: recipe}},
		&fakeMenuReader{},
	)

	cost, err := svc.RecipeCost(context.Background(), tenantID, recipe.ID, 0)

	require.NoError(t, err)
	assert.Equal(t, 4, cost.Servings)
	require.Len(t, cost.Items, 1)
	assert.True(t, cost.Items[0].UnitPrice.Equal(d("5")))
	assert.True(t, cost.Items[0].Cost.Equal(d("10")))
	assert.True(t, cost.TotalCost.Equal(d("10")))
	assert.True(t, cost.CostPerServing.Equal(d("2.5")))
	assert.True(t, cost.Items[0].HasPriceData)
}

func TestRecipeCost_ScalesLinearly(t *testing.T) {
	tenantID := id.New()
	flour := id.New()

	// base recipe serves 4 at a total cost of 20
	recipe := testRecipe(tenantID, "Bread", 4, map[id.ID]string{flour: "4"})
	svc := NewService(
		&fakePriceReader{latest: map[id.ID]ledger.PurchaseLot{flour: pricedLot(tenantID, flour, "1", "5")}},
		&fakeRecipeReader{byID: map[id.ID]*recipes.Recipe{recipe.ID: recipe}},
		&fakeMenuReader{},
	)

	cost, err := svc.RecipeCost(context.Background(), tenantID, recipe.ID, 8)

	require.NoError(t, err)
	assert.Equal(t, 8, cost.Servings)
	assert.True(t, cost.TotalCost.Equal(d("40")), "total = %s", cost.TotalCost)
	assert.True(t, cost.CostPerServing.Equal(d("5")))
}

func TestRecipeCost_UnpricedIngredientContributesZero(t *testing.T) {
	tenantID := id.New()
	priced := id.New()
	unpriced := id.New()

	recipe := testRecipe(tenantID, "Soup", 1, map[id.ID]string{priced: "2", unpriced: "3"})
	svc := NewService(
		&fakePriceReader{latest: map[id.ID]ledger.PurchaseLot{priced: pricedLot(tenantID, priced, "1", "3")}},
		&fakeRecipeReader{byID: map[id.ID]*recipes.Recipe{recipe.ID: recipe}},
		&fakeMenuReader{},
	)

	cost, err := svc.RecipeCost(context.Background(), tenantID, recipe.ID, 0)

	require.NoError(t, err)
	assert.True(t, cost.TotalCost.Equal(d("6")))
	for _, item := range cost.Items {
		if item.IngredientID == unpriced {
			assert.False(t, item.HasPriceData)
			assert.True(t, item.Cost.IsZero())
		}
	}
}

func TestRecipeCost_ZeroQuantityLotHasNoPrice(t *testing.T) {
	tenantID := id.New()
	ing := id.New()

	recipe := testRecipe(tenantID, "Stew", 2, map[id.ID]string{ing: "1"})
	svc := NewService(
		&fakePriceReader{latest: map[id.ID]ledger.PurchaseLot{ing: pricedLot(tenantID, ing, "0", "10")}},
		&fakeRecipeReader{byID: map[id.ID]*recipes.Recipe{recipe.ID: recipe}},
		&fakeMenuReader{},
	)

	cost, err := svc.RecipeCost(context.Background(), tenantID, recipe.ID, 0)

	require.NoError(t, err)
	assert.True(t, cost.TotalCost.IsZero())
	assert.False(t, cost.Items[0].HasPriceData)
}

func TestRecipeCost_NotFound(t *testing.T) {
	svc := NewService(&fakePriceReader{}, &fakeRecipeReader{byID: map[id.ID]*recipes.Recipe{}}, &fakeMenuReader{})

	_, err := svc.RecipeCost(context.Background(), id.New(), id.New(), 0)

	assert.True(t, apperror.IsNotFound(err))
}

func TestRecipeCostList_SharedPriceLookup(t *testing.T) {
	tenantID := id.New()
	shared := id.New()

	r1 := testRecipe(tenantID, "Pasta", 2, map[id.ID]string{shared: "1"})
	r2 := testRecipe(tenantID, "Pizza", 2, map[id.ID]string{shared: "2"})
	svc := NewService(
		&fakePriceReader{latest: map[id.ID]ledger.PurchaseLot{shared: pricedLot(tenantID, shared, "1", "4")}},
		&fakeRecipeReader{byID: map[id.ID]*recipes.Recipe{r1.ID: r1, r2.ID: r2}},
		&fakeMenuReader{},
	)

	costs, err := svc.RecipeCostList(context.Background(), tenantID, []id.ID{r1.ID, r2.ID})

	require.NoError(t, err)
	require.Len(t, costs, 2)
	assert.True(t, costs[0].TotalCost.Add(costs[1].TotalCost).Equal(d("12")))
}

func TestMenuCost_FailedLineCountsAsZero(t *testing.T) {
	tenantID := id.New()
	flour := id.New()

	good := testRecipe(tenantID, "Bread", 1, map[id.ID]string{flour: "1"})
	missing := id.New()

	menu := recipes.NewMenuPlan(tenantID, "Lunch")
	menu.Lines = []recipes.MenuLine{
		{ID: id.New(), MenuID: menu.ID, RecipeID: good.ID, Servings: 2},
		{ID: id.New(), MenuID: menu.ID, RecipeID: missing, Servings: 3},
	}

	svc := NewService(
		&fakePriceReader{latest: map[id.ID]ledger.PurchaseLot{flour: pricedLot(tenantID, flour, "1", "5")}},
		&fakeRecipeReader{byID: map[id.ID]*recipes.Recipe{good.ID: good}},
		&fakeMenuReader{byID: map[id.ID]*recipes.MenuPlan{menu.ID: menu}},
	)

	cost, err := svc.MenuCost(context.Background(), tenantID, menu.ID)

	require.NoError(t, err)
	require.Len(t, cost.Lines, 2)
	assert.False(t, cost.Lines[0].Failed)
	assert.True(t, cost.Lines[0].Cost.Equal(d("10")))
	assert.True(t, cost.Lines[1].Failed)
	assert.True(t, cost.Lines[1].Cost.IsZero())
	assert.True(t, cost.TotalCost.Equal(d("10")))
}
