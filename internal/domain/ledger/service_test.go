package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// passthroughTx runs the function directly, outside any real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordedAudit struct {
	Action     string
	EntityType string
	EntityID   id.ID
}

type fakeAudit struct {
	records []recordedAudit
}

func (f *fakeAudit) Record(ctx context.Context, action, entityType string, entityID id.ID, payload any) error {
	f.records = append(f.records, recordedAudit{Action: action, EntityType: entityType, EntityID: entityID})
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

func allowAll(ids ...id.ID) *fakeRefChecker {
	known := make(map[id.ID]bool, len(ids))
	for _, v := range ids {
		known[v] = true
	}
	return &fakeRefChecker{known: known}
}

// fakeLedgerRepo keeps lots and events in memory.
type fakeLedgerRepo struct {
	lots      map[id.ID]*PurchaseLot
	usage     []UsageEvent
	spoilage  []SpoilageEvent
	lockCalls int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{lots: make(map[id.ID]*PurchaseLot)}
}

func (f *fakeLedgerRepo) InsertLot(ctx context.Context, lot *PurchaseLot) error {
	f.lots[lot.ID] = lot
	return nil
}

func (f *fakeLedgerRepo) GetLot(ctx context.Context, tenantID, lotID id.ID) (*PurchaseLot, error) {
	lot, ok := f.lots[lotID]
	if !ok || lot.TenantID != tenantID {
		return nil, apperror.NewNotFound("purchase lot", lotID.String())
	}
	return lot, nil
}

func (f *fakeLedgerRepo) GetLotForUpdate(ctx context.Context, tenantID, lotID id.ID) (*PurchaseLot, error) {
	f.lockCalls++
	return f.GetLot(ctx, tenantID, lotID)
}

func (f *fakeLedgerRepo) ListLots(ctx context.Context, tenantID id.ID, filter LotFilter) ([]PurchaseLot, error) {
	var out []PurchaseLot
	for _, lot := range f.lots {
		if lot.TenantID == tenantID {
			out = append(out, *lot)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) GetLots(ctx context.Context, tenantID id.ID, lotIDs []id.ID) ([]PurchaseLot, error) {
	var out []PurchaseLot
	for _, lid := range lotIDs {
		if lot, ok := f.lots[lid]; ok && lot.TenantID == tenantID {
			out = append(out, *lot)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListLotsByIngredients(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]PurchaseLot, error) {
	want := make(map[id.ID]bool, len(ingredientIDs))
	for _, v := range ingredientIDs {
		want[v] = true
	}
	var out []PurchaseLot
	for _, lot := range f.lots {
		if lot.TenantID == tenantID && want[lot.IngredientID] {
			out = append(out, *lot)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListLotsByIngredientsForUpdate(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]PurchaseLot, error) {
	f.lockCalls++
	return f.ListLotsByIngredients(ctx, tenantID, ingredientIDs)
}

func (f *fakeLedgerRepo) LatestLotPerIngredient(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) (map[id.ID]PurchaseLot, error) {
	out := make(map[id.ID]PurchaseLot)
	for _, ingID := range ingredientIDs {
		for _, lot := range f.lots {
			if lot.TenantID != tenantID || lot.IngredientID != ingID {
				continue
			}
			if existing, ok := out[ingID]; !ok || lot.PurchaseDate.After(existing.PurchaseDate) {
				out[ingID] = *lot
			}
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ExpiringLots(ctx context.Context, tenantID id.ID, horizon time.Time) ([]PurchaseLot, error) {
	var out []PurchaseLot
	for _, lot := range f.lots {
		if lot.TenantID == tenantID && lot.ExpirationDate != nil && !lot.ExpirationDate.After(horizon) {
			out = append(out, *lot)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) InsertUsage(ctx context.Context, ev *UsageEvent) error {
	f.usage = append(f.usage, *ev)
	return nil
}

func (f *fakeLedgerRepo) InsertUsageBatch(ctx context.Context, events []UsageEvent) error {
	f.usage = append(f.usage, events...)
	return nil
}

func (f *fakeLedgerRepo) InsertSpoilage(ctx context.Context, ev *SpoilageEvent) error {
	f.spoilage = append(f.spoilage, *ev)
	return nil
}

func (f *fakeLedgerRepo) ConsumptionByLot(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]LotConsumption, error) {
	out := make(map[id.ID]LotConsumption)
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

type serviceFixture struct {
	repo       *fakeLedgerRepo
	audit      *fakeAudit
	dispatcher *fakeDispatcher
	service    *Service

	tenantID     id.ID
	ingredientID id.ID
	locationID   id.ID
	supplierID   id.ID
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:         newFakeLedgerRepo(),
		audit:        &fakeAudit{},
		dispatcher:   &fakeDispatcher{},
		tenantID:     id.New(),
		ingredientID: id.New(),
		locationID:   id.New(),
		supplierID:   id.New(),
	}
	f.service = NewService(
		f.repo,
		allowAll(f.ingredientID),
		allowAll(f.locationID),
		allowAll(f.supplierID),
		passthroughTx{},
		f.audit,
		f.dispatcher,
	)
	return f
}

func (f *serviceFixture) newLot(qty string) *PurchaseLot {
	return NewPurchaseLot(f.tenantID, f.ingredientID, f.locationID, f.supplierID, d(qty), d("50"), time.Now().UTC())
}

func TestRecordPurchase(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")

	err := f.service.RecordPurchase(context.Background(), lot)

	require.NoError(t, err)
	assert.Contains(t, f.repo.lots, lot.ID)
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, "purchase", f.audit.records[0].Action)
	assert.Equal(t, "purchase_lot", f.audit.records[0].EntityType)
	require.Len(t, f.dispatcher.enqueued, 1)
	assert.Equal(t, f.ingredientID, f.dispatcher.enqueued[0])
}

func TestRecordPurchase_UnknownIngredient(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")
	lot.IngredientID = id.New()

	err := f.service.RecordPurchase(context.Background(), lot)

	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.repo.lots)
	assert.Empty(t, f.audit.records)
	assert.Empty(t, f.dispatcher.enqueued)
}

func TestRecordPurchase_InvalidQuantity(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("0")

	err := f.service.RecordPurchase(context.Background(), lot)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRecordUsage(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")
	require.NoError(t, f.service.RecordPurchase(context.Background(), lot))

	ev := NewUsageEvent(f.tenantID, lot.ID, d("4"), time.Now().UTC(), "dinner service")
	err := f.service.RecordUsage(context.Background(), ev)

	require.NoError(t, err)
	require.Len(t, f.repo.usage, 1)
	assert.Equal(t, 1, f.repo.lockCalls)
	// audit: purchase + usage
	require.Len(t, f.audit.records, 2)
	assert.Equal(t, "usage", f.audit.records[1].Action)
	assert.Equal(t, "usage_event", f.audit.records[1].EntityType)
}

func TestRecordUsage_InsufficientStock(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")
	require.NoError(t, f.service.RecordPurchase(context.Background(), lot))
	require.NoError(t, f.service.RecordUsage(context.Background(),
		NewUsageEvent(f.tenantID, lot.ID, d("8"), time.Now().UTC(), "prep")))

	err := f.service.RecordUsage(context.Background(),
		NewUsageEvent(f.tenantID, lot.ID, d("5"), time.Now().UTC(), "prep"))

	require.True(t, apperror.IsInsufficientStock(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "5", appErr.Details["requested"])
	assert.Equal(t, "2", appErr.Details["available"])
	assert.Equal(t, "3", appErr.Details["shortage"])
	assert.Len(t, f.repo.usage, 1)
}

func TestRecordUsage_ExactRemaining(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")
	require.NoError(t, f.service.RecordPurchase(context.Background(), lot))

	err := f.service.RecordUsage(context.Background(),
		NewUsageEvent(f.tenantID, lot.ID, d("10"), time.Now().UTC(), "everything"))

	require.NoError(t, err)
	assert.Len(t, f.repo.usage, 1)
}

func TestRecordUsage_UnknownLot(t *testing.T) {
	f := newServiceFixture()

	err := f.service.RecordUsage(context.Background(),
		NewUsageEvent(f.tenantID, id.New(), d("1"), time.Now().UTC(), "prep"))

	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordSpoilage(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")
	require.NoError(t, f.service.RecordPurchase(context.Background(), lot))

	ev := NewSpoilageEvent(f.tenantID, lot.ID, d("3"), time.Now().UTC(), "freezer failure")
	err := f.service.RecordSpoilage(context.Background(), ev)

	require.NoError(t, err)
	require.Len(t, f.repo.spoilage, 1)
	assert.Equal(t, "spoilage", f.audit.records[1].Action)
}

func TestRecordSpoilage_ReasonRequired(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")
	require.NoError(t, f.service.RecordPurchase(context.Background(), lot))

	ev := NewSpoilageEvent(f.tenantID, lot.ID, d("1"), time.Now().UTC(), "")
	err := f.service.RecordSpoilage(context.Background(), ev)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "reason", appErr.Details["field"])
}

func TestRecordSpoilage_CountsUsageAgainstRemaining(t *testing.T) {
	f := newServiceFixture()
	lot := f.newLot("10")
	require.NoError(t, f.service.RecordPurchase(context.Background(), lot))
	require.NoError(t, f.service.RecordUsage(context.Background(),
		NewUsageEvent(f.tenantID, lot.ID, d("6"), time.Now().UTC(), "prep")))

	err := f.service.RecordSpoilage(context.Background(),
		NewSpoilageEvent(f.tenantID, lot.ID, d("5"), time.Now().UTC(), "expired"))

	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestLotRemaining_FloorsAtZero(t *testing.T) {
	lot := &PurchaseLot{Quantity: d("5")}
	remaining := lot.Remaining(LotConsumption{Used: d("4"), Spoiled: d("3")})
	assert.True(t, remaining.IsZero())
}

func TestLotUnitPrice(t *testing.T) {
	lot := &PurchaseLot{Quantity: d("4"), PurchasePrice: d("20")}
	assert.True(t, lot.UnitPrice().Equal(d("5")))

	zero := &PurchaseLot{Quantity: decimal.Zero, PurchasePrice: d("20")}
	assert.True(t, zero.UnitPrice().IsZero())
	assert.False(t, zero.HasPriceData())
}
