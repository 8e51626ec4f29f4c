package analytics

import (
	"context"
	"time"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

// Repository persists precomputed analytics and exposes the joined ledger
// read model the calculations run on.
type Repository interface {
	// LotFacts returns lots joined with their directory names and
	// consumption sums. A nil ingredient filter returns every lot of the
	// tenant.
	LotFacts(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]LotFact, error)

	// DailyPurchaseValues returns purchased value grouped by calendar
	// date over the range, end date inclusive.
	DailyPurchaseValues(ctx context.Context, tenantID id.ID, from, to time.Time) ([]DailyValue, error)

	// DailyConsumptionValues returns usage plus spoilage valued at each
	// lot's unit price, grouped by calendar date over the range.
	DailyConsumptionValues(ctx context.Context, tenantID id.ID, from, to time.Time) ([]DailyValue, error)

	// UpsertIngredientAnalytics writes the row for (tenant, ingredient),
	// replacing any previous computation.
	UpsertIngredientAnalytics(ctx context.Context, row *IngredientAnalytics) error

	GetIngredientAnalytics(ctx context.Context, tenantID, ingredientID id.ID) (*IngredientAnalytics, error)

	// UpsertDailySnapshot writes the row for (tenant, date), replacing any
	// previous snapshot of the same day.
	UpsertDailySnapshot(ctx context.Context, snap *DailySnapshot) error

	ListSnapshots(ctx context.Context, tenantID id.ID, from, to time.Time) ([]DailySnapshot, error)

	// ListStale returns analytics rows computed before the cutoff, for the
	// background refresher.
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]StaleEntry, error)

	// ListTenants returns every tenant with at least one purchase lot.
	ListTenants(ctx context.Context) ([]id.ID, error)
}
