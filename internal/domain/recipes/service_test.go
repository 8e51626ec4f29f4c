package recipes

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
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, action, entityType string, entityID id.ID, payload any) error {
	f.actions = append(f.actions, action)
	return nil
}

type fakeDispatcher struct {
	enqueued []id.ID
}

func (f *fakeDispatcher) Enqueue(tenantID, ingredientID id.ID) {
	f.enqueued = append(f.enqueued, ingredientID)
}

type fakeRefChecker struct {
	known map[id.ID]bool
}

func (f *fakeRefChecker) Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error) {
	return f.known[entityID], nil
}

type fakeRecipeRepo struct {
	byID map[id.ID]*Recipe
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{byID: make(map[id.ID]*Recipe)}
}

func (f *fakeRecipeRepo) Create(ctx context.Context, recipe *Recipe) error {
	f.byID[recipe.ID] = recipe
	return nil
}

func (f *fakeRecipeRepo) GetByID(ctx context.Context, tenantID, recipeID id.ID) (*Recipe, error) {
	r, ok := f.byID[recipeID]
	if !ok || r.TenantID != tenantID {
		return nil, apperror.NewNotFound("recipe", recipeID.String())
	}
	return r, nil
}

func (f *fakeRecipeRepo) GetMany(ctx context.Context, tenantID id.ID, recipeIDs []id.ID) ([]*Recipe, error) {
	var out []*Recipe
	for _, rid := range recipeIDs {
		if r, ok := f.byID[rid]; ok && r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*Recipe], error) {
	var items []*Recipe
	for _, r := range f.byID {
		if r.TenantID == tenantID {
			items = append(items, r)
		}
	}
	return domain.ListResult[*Recipe]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeRecipeRepo) Update(ctx context.Context, recipe *Recipe) error {
	f.byID[recipe.ID] = recipe
	return nil
}

func (f *fakeRecipeRepo) Delete(ctx context.Context, tenantID, recipeID id.ID) error {
	delete(f.byID, recipeID)
	return nil
}

func (f *fakeRecipeRepo) Exists(ctx context.Context, tenantID, recipeID id.ID) (bool, error) {
	r, ok := f.byID[recipeID]
	return ok && r.TenantID == tenantID, nil
}

type fakeMenuRepo struct {
	byID map[id.ID]*MenuPlan
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{byID: make(map[id.ID]*MenuPlan)}
}

func (f *fakeMenuRepo) Create(ctx context.Context, menu *MenuPlan) error {
	f.byID[menu.ID] = menu
	return nil
}

func (f *fakeMenuRepo) GetByID(ctx context.Context, tenantID, menuID id.ID) (*MenuPlan, error) {
	m, ok := f.byID[menuID]
	if !ok || m.TenantID != tenantID {
		return nil, apperror.NewNotFound("menu", menuID.String())
	}
	return m, nil
}

func (f *fakeMenuRepo) List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*MenuPlan], error) {
	var items []*MenuPlan
	for _, m := range f.byID {
		if m.TenantID == tenantID {
			items = append(items, m)
		}
	}
	return domain.ListResult[*MenuPlan]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeMenuRepo) Update(ctx context.Context, menu *MenuPlan) error {
	f.byID[menu.ID] = menu
	return nil
}

func (f *fakeMenuRepo) Delete(ctx context.Context, tenantID, menuID id.ID) error {
	delete(f.byID, menuID)
	return nil
}

type fakeLedgerAccess struct {
	lots     []ledger.PurchaseLot
	usage    []ledger.UsageEvent
	spoilage []ledger.SpoilageEvent
}

func (f *fakeLedgerAccess) ListLotsByIngredientsForUpdate(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]ledger.PurchaseLot, error) {
	want := make(map[id.ID]bool, len(ingredientIDs))
	for _, v := range ingredientIDs {
		want[v] = true
	}
	var out []ledger.PurchaseLot
	for _, lot := range f.lots {
		if lot.TenantID == tenantID && want[lot.IngredientID] {
			out = append(out, lot)
		}
	}
	return out, nil
}

func (f *fakeLedgerAccess) ConsumptionByLot(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]ledger.LotConsumption, error) {
	out := make(map[id.ID]ledger.LotConsumption)
	for _, ev := range f.usage {
		c := out[ev.LotID]
		c.Used = c.Used.Add(ev.Quantity)
		out[ev.LotID] = c
	}
	for _, ev := range f.spoilage {
		c := out[ev.LotID]
		c.Spoiled = c.Spoiled.Add(ev.Quantity)
		out[ev.LotID] = c
	}
	return out, nil
}

func (f *fakeLedgerAccess) InsertUsageBatch(ctx context.Context, events []ledger.UsageEvent) error {
	f.usage = append(f.usage, events...)
	return nil
}

type completionFixture struct {
	service    *Service
	repo       *fakeRecipeRepo
	ledger     *fakeLedgerAccess
	audit      *fakeAudit
	dispatcher *fakeDispatcher
	refs       *fakeRefChecker

	tenantID id.ID
}

func newCompletionFixture() *completionFixture {
	f := &completionFixture{
		repo:       newFakeRecipeRepo(),
		ledger:     &fakeLedgerAccess{},
		audit:      &fakeAudit{},
		dispatcher: &fakeDispatcher{},
		refs:       &fakeRefChecker{known: make(map[id.ID]bool)},
		tenantID:   id.New(),
	}
	f.service = NewService(f.repo, newFakeMenuRepo(), f.ledger, f.refs, passthroughTx{}, f.audit, f.dispatcher)
	return f
}

func (f *completionFixture) addIngredient() id.ID {
	ingID := id.New()
	f.refs.known[ingID] = true
	return ingID
}

func (f *completionFixture) addLot(ingredientID id.ID, qty string, purchased time.Time) ledger.PurchaseLot {
	lot := ledger.NewPurchaseLot(f.tenantID, ingredientID, id.New(), id.New(), d(qty), d("10"), purchased)
	f.ledger.lots = append(f.ledger.lots, *lot)
	return *lot
}

func (f *completionFixture) addRecipe(serves int, lines map[id.ID]string) *Recipe {
	r := NewRecipe(f.tenantID, "Test Dish", serves)
	for ingID, qty := range lines {
		r.Ingredients = append(r.Ingredients, RecipeIngredient{
			ID:           id.New(),
			RecipeID:     r.ID,
			IngredientID: ingID,
			Quantity:     d(qty),
		})
	}
	f.repo.byID[r.ID] = r
	return r
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 0, 0, 0, 0, time.UTC)
}

func TestComplete_DeductsOldestLotsFirst(t *testing.T) {
	f := newCompletionFixture()
	ing := f.addIngredient()
	older := f.addLot(ing, "5", day(1))
	newer := f.addLot(ing, "5", day(10))
	recipe := f.addRecipe(2, map[id.ID]string{ing: "7"})

	result, err := f.service.Complete(context.Background(), f.tenantID, CompleteRequest{
		RecipeID: recipe.ID,
		Servings: 2,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Shortages)
	assert.Equal(t, 2, result.EventsWritten)

	require.Len(t, f.ledger.usage, 2)
	assert.Equal(t, older.ID, f.ledger.usage[0].LotID)
	assert.True(t, f.ledger.usage[0].Quantity.Equal(d("5")))
	assert.Equal(t, newer.ID, f.ledger.usage[1].LotID)
	assert.True(t, f.ledger.usage[1].Quantity.Equal(d("2")))

	require.Len(t, f.audit.actions, 1)
	assert.Equal(t, "recipe_completed", f.audit.actions[0])
	assert.Equal(t, []id.ID{ing}, f.dispatcher.enqueued)
}

func TestComplete_ScalesToServings(t *testing.T) {
	f := newCompletionFixture()
	ing := f.addIngredient()
	f.addLot(ing, "20", day(1))
	recipe := f.addRecipe(4, map[id.ID]string{ing: "4"})

	result, err := f.service.Complete(context.Background(), f.tenantID, CompleteRequest{
		RecipeID: recipe.ID,
		Servings: 8,
	})

	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, f.ledger.usage, 1)
	assert.True(t, f.ledger.usage[0].Quantity.Equal(d("8")))
}

func TestComplete_StrictModeRefusesOnShortage(t *testing.T) {
	f := newCompletionFixture()
	covered := f.addIngredient()
	short := f.addIngredient()
	f.addLot(covered, "10", day(1))
	f.addLot(short, "1", day(1))
	recipe := f.addRecipe(1, map[id.ID]string{covered: "2", short: "5"})

	result, err := f.service.Complete(context.Background(), f.tenantID, CompleteRequest{
		RecipeID: recipe.ID,
		Servings: 1,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, result.EventsWritten)
	assert.Empty(t, f.ledger.usage, "strict refusal must write nothing")
	assert.Empty(t, f.dispatcher.enqueued)

	require.Len(t, result.Shortages, 1)
	s := result.Shortages[0]
	assert.Equal(t, short, s.IngredientID)
	assert.True(t, s.Required.Equal(d("5")))
	assert.True(t, s.Available.Equal(d("1")))
	assert.True(t, s.Shortage.Equal(d("4")))
}

func TestComplete_PartialModeDeductsWhatIsAvailable(t *testing.T) {
	f := newCompletionFixture()
	covered := f.addIngredient()
	short := f.addIngredient()
	f.addLot(covered, "10", day(1))
	f.addLot(short, "1", day(1))
	recipe := f.addRecipe(1, map[id.ID]string{covered: "2", short: "5"})

	result, err := f.service.Complete(context.Background(), f.tenantID, CompleteRequest{
		RecipeID:          recipe.ID,
		Servings:          1,
		AllowPartialStock: true,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Shortages, 1)
	assert.Equal(t, 2, result.EventsWritten)
	require.Len(t, f.ledger.usage, 2)

	total := decimal.Zero
	for _, ev := range f.ledger.usage {
		total = total.Add(ev.Quantity)
	}
	assert.True(t, total.Equal(d("3")), "deducted = %s", total)
	assert.Len(t, f.dispatcher.enqueued, 2)
}

func TestComplete_ActualQuantityOverride(t *testing.T) {
	f := newCompletionFixture()
	ing := f.addIngredient()
	f.addLot(ing, "10", day(1))
	recipe := f.addRecipe(2, map[id.ID]string{ing: "4"})

	result, err := f.service.Complete(context.Background(), f.tenantID, CompleteRequest{
		RecipeID:         recipe.ID,
		Servings:         2,
		ActualQuantities: map[id.ID]decimal.Decimal{ing: d("6.5")},
	})

	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, f.ledger.usage, 1)
	assert.True(t, f.ledger.usage[0].Quantity.Equal(d("6.5")))
}

func TestComplete_InvalidServings(t *testing.T) {
	f := newCompletionFixture()

	_, err := f.service.Complete(context.Background(), f.tenantID, CompleteRequest{
		RecipeID: id.New(),
		Servings: 0,
	})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestComplete_RecipeNotFound(t *testing.T) {
	f := newCompletionFixture()

	_, err := f.service.Complete(context.Background(), f.tenantID, CompleteRequest{
		RecipeID: id.New(),
		Servings: 1,
	})

	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_RejectsUnknownIngredient(t *testing.T) {
	f := newCompletionFixture()
	recipe := NewRecipe(f.tenantID, "Mystery", 2)
	recipe.Ingredients = []RecipeIngredient{
		{ID: id.New(), RecipeID: recipe.ID, IngredientID: id.New(), Quantity: d("1")},
	}

	err := f.service.Create(context.Background(), recipe)

	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateMenu_RejectsUnknownRecipe(t *testing.T) {
	f := newCompletionFixture()
	menu := NewMenuPlan(f.tenantID, "Dinner")
	menu.Lines = []MenuLine{
		{ID: id.New(), MenuID: menu.ID, RecipeID: id.New(), Servings: 2},
	}

	err := f.service.CreateMenu(context.Background(), menu)

	assert.True(t, apperror.IsNotFound(err))
}

func TestRecipeValidate_DuplicateIngredient(t *testing.T) {
	tenantID := id.New()
	ing := id.New()
	recipe := NewRecipe(tenantID, "Dup", 1)
	recipe.Ingredients = []RecipeIngredient{
		{ID: id.New(), RecipeID: recipe.ID, IngredientID: ing, Quantity: d("1")},
		{ID: id.New(), RecipeID: recipe.ID, IngredientID: ing, Quantity: d("2")},
	}

	err := recipe.Validate(context.Background())

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
