package ledger

import (
	"context"
	"time"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

// LotFilter narrows lot listings.
type LotFilter struct {
	IngredientID *id.ID
	LocationID   *id.ID
	SupplierID   *id.ID
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}

// Repository defines operations over the ledger tables.
//
// Batch methods exist so derived-state computation never degrades into one
// query per lot: remaining quantity for N lots is always lots + two grouped
// sums, regardless of N.
type Repository interface {
	// Lot operations

	// InsertLot appends a purchase lot.
	InsertLot(ctx context.Context, lot *PurchaseLot) error

	// GetLot retrieves a lot within the tenant.
	GetLot(ctx context.Context, tenantID, lotID id.ID) (*PurchaseLot, error)

	// GetLotForUpdate retrieves a lot with a row lock. Must be called inside
	// a transaction; serializes concurrent usage/spoilage postings against
	// the same lot.
	GetLotForUpdate(ctx context.Context, tenantID, lotID id.ID) (*PurchaseLot, error)

	// ListLots retrieves lots matching the filter, oldest purchase first.
	ListLots(ctx context.Context, tenantID id.ID, filter LotFilter) ([]PurchaseLot, error)

	// GetLots batch-fetches lots by ID within the tenant.
	GetLots(ctx context.Context, tenantID id.ID, lotIDs []id.ID) ([]PurchaseLot, error)

	// ListLotsByIngredients batch-fetches lots for a set of ingredients,
	// ordered by purchase date then ID (stable FIFO order).
	ListLotsByIngredients(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]PurchaseLot, error)

	// ListLotsByIngredientsForUpdate is ListLotsByIngredients with row locks.
	// Must be called inside a transaction.
	ListLotsByIngredientsForUpdate(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]PurchaseLot, error)

	// LatestLotPerIngredient returns the most recent lot (by purchase date,
	// then creation order) for each of the given ingredients, in one query
	// set. Ingredients with no purchase history are absent from the map.
	LatestLotPerIngredient(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) (map[id.ID]PurchaseLot, error)

	// ExpiringLots returns lots whose expiration date falls on or before
	// the horizon.
	ExpiringLots(ctx context.Context, tenantID id.ID, horizon time.Time) ([]PurchaseLot, error)

	// Event operations

	// InsertUsage appends a usage event.
	InsertUsage(ctx context.Context, ev *UsageEvent) error

	// InsertUsageBatch appends usage events in one round-trip.
	// Must be called inside a transaction.
	InsertUsageBatch(ctx context.Context, events []UsageEvent) error

	// InsertSpoilage appends a spoilage event.
	InsertSpoilage(ctx context.Context, ev *SpoilageEvent) error

	// Grouped sums

	// ConsumptionByLot returns usage and spoilage sums grouped by lot for
	// the given lots. A nil/empty lotIDs slice means all lots of the tenant.
	// Lots with no events are absent from the map.
	ConsumptionByLot(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]LotConsumption, error)
}
