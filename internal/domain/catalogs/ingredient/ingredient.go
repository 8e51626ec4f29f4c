// Package ingredient provides the ingredient directory.
// Ingredients reference a category and a unit, and carry the restock
// threshold the low-stock report compares remaining stock against.
package ingredient

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
)

// Ingredient represents a purchasable ingredient, unique by name per tenant.
type Ingredient struct {
	entity.Directory

	// CategoryID references the ingredient category
	CategoryID id.ID `db:"category_id" json:"categoryId"`

	// UnitID references the purchase unit quantities are recorded in
	UnitID id.ID `db:"unit_id" json:"unitId"`

	// RestockThreshold marks the ingredient low-stock when its summed
	// remaining quantity across all lots falls below it
	RestockThreshold decimal.Decimal `db:"restock_threshold" json:"restockThreshold"`
}

// New creates a new Ingredient.
func New(tenantID id.ID, name string, categoryID, unitID id.ID) *Ingredient {
	return &Ingredient{
		Directory:        entity.NewDirectory(tenantID, name),
		CategoryID:       categoryID,
		UnitID:           unitID,
		RestockThreshold: decimal.Zero,
	}
}

// Validate implements entity.Validatable.
func (i *Ingredient) Validate(ctx context.Context) error {
	if err := i.Directory.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(i.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}
	if id.IsNil(i.UnitID) {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unitId")
	}
	if i.RestockThreshold.IsNegative() {
		return apperror.NewValidation("restock threshold cannot be negative").
			WithDetail("field", "restockThreshold")
	}
	return nil
}

// Repository defines the interface for Ingredient persistence.
type Repository interface {
	domain.DirectoryRepository[*Ingredient]

	// ListAll retrieves every ingredient of the tenant (for stock summaries).
	ListAll(ctx context.Context, tenantID id.ID) ([]*Ingredient, error)
}

// RefChecker verifies a referenced directory entry exists within the tenant.
type RefChecker interface {
	Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error)
}

// Service provides business logic for the Ingredient directory.
type Service struct {
	*domain.DirectoryService[*Ingredient]
	repo       Repository
	categories RefChecker
	units      RefChecker
}

// NewService creates a new Ingredient service.
func NewService(repo Repository, categories, units RefChecker, txManager tx.Manager) *Service {
	return &Service{
		DirectoryService: domain.NewDirectoryService[*Ingredient](repo, txManager, "ingredient"),
		repo:             repo,
		categories:       categories,
		units:            units,
	}
}

// Create validates category/unit references before delegating.
func (s *Service) Create(ctx context.Context, ing *Ingredient) error {
	if err := s.checkRefs(ctx, ing); err != nil {
		return err
	}
	return s.DirectoryService.Create(ctx, ing)
}

// Update validates category/unit references before delegating.
func (s *Service) Update(ctx context.Context, ing *Ingredient) error {
	if err := s.checkRefs(ctx, ing); err != nil {
		return err
	}
	return s.DirectoryService.Update(ctx, ing)
}

// ListAll retrieves every ingredient of the tenant.
func (s *Service) ListAll(ctx context.Context, tenantID id.ID) ([]*Ingredient, error) {
	return s.repo.ListAll(ctx, tenantID)
}

func (s *Service) checkRefs(ctx context.Context, ing *Ingredient) error {
	if !id.IsNil(ing.CategoryID) {
		ok, err := s.categories.Exists(ctx, ing.TenantID, ing.CategoryID)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if !ok {
			return apperror.NewNotFound("category", ing.CategoryID.String())
		}
	}
	if !id.IsNil(ing.UnitID) {
		ok, err := s.units.Exists(ctx, ing.TenantID, ing.UnitID)
		if err != nil {
			return apperror.NewInternal(err)
		}
		if !ok {
			return apperror.NewNotFound("unit", ing.UnitID.String())
		}
	}
	return nil
}
