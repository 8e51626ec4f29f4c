package recipes

import (
	"context"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
)

// Repository persists recipes with their ingredient lines. Header and lines
// are saved together inside the caller's transaction.
type Repository interface {
	Create(ctx context.Context, recipe *Recipe) error
	GetByID(ctx context.Context, tenantID, recipeID id.ID) (*Recipe, error)
	// GetMany fetches recipes with lines by ID in one round-trip pair.
	GetMany(ctx context.Context, tenantID id.ID, recipeIDs []id.ID) ([]*Recipe, error)
	List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*Recipe], error)
	Update(ctx context.Context, recipe *Recipe) error
	Delete(ctx context.Context, tenantID, recipeID id.ID) error
	Exists(ctx context.Context, tenantID, recipeID id.ID) (bool, error)
}

// MenuRepository persists menu plans with their lines.
type MenuRepository interface {
	Create(ctx context.Context, menu *MenuPlan) error
	GetByID(ctx context.Context, tenantID, menuID id.ID) (*MenuPlan, error)
	List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*MenuPlan], error)
	Update(ctx context.Context, menu *MenuPlan) error
	Delete(ctx context.Context, tenantID, menuID id.ID) error
}
