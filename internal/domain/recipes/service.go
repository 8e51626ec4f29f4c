package recipes

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
	"github.com/ItsEgzix/Tasto-backend/internal/core/types"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/stock"
	"github.com/ItsEgzix/Tasto-backend/pkg/logger"
)

// LedgerAccess is the slice of the ledger repository the completion flow
// needs. Lot reads take row locks so concurrent completions cannot consume
// the same stock twice.
type LedgerAccess interface {
	ListLotsByIngredientsForUpdate(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) ([]ledger.PurchaseLot, error)
	ConsumptionByLot(ctx context.Context, tenantID id.ID, lotIDs []id.ID) (map[id.ID]ledger.LotConsumption, error)
	InsertUsageBatch(ctx context.Context, events []ledger.UsageEvent) error
}

// RefChecker verifies a referenced entity exists within the tenant.
type RefChecker interface {
	Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error)
}

// CompleteRequest asks to deduct stock for cooking a recipe.
type CompleteRequest struct {
	RecipeID id.ID `json:"recipeId"`
	Servings int   `json:"servings"`
	// ActualQuantities overrides the scaled recipe quantity per ingredient,
	// for when the kitchen used more or less than the recipe calls for.
	ActualQuantities map[id.ID]decimal.Decimal `json:"actualQuantities,omitempty"`
	// AllowPartialStock deducts whatever is available instead of refusing
	// the whole completion on any shortage.
	AllowPartialStock bool `json:"allowPartialStock"`
}

// Shortage reports an ingredient the completion could not fully cover.
type Shortage struct {
	IngredientID id.ID           `json:"ingredientId"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Shortage     decimal.Decimal `json:"shortage"`
}

// CompletionResult reports what a completion attempt did. Success false
// with shortages means strict mode refused and wrote nothing.
type CompletionResult struct {
	Success   bool       `json:"success"`
	RecipeID  id.ID      `json:"recipeId"`
	Servings  int        `json:"servings"`
	Shortages []Shortage `json:"shortages,omitempty"`
	// EventsWritten is the number of usage events appended to the ledger.
	EventsWritten int `json:"eventsWritten"`
}

// Service manages recipes and menu plans and runs recipe completions
// against the stock ledger.
type Service struct {
	repo        Repository
	menus       MenuRepository
	ledger      LedgerAccess
	ingredients RefChecker
	txManager   tx.Manager
	audit       ledger.AuditTrail
	analytics   ledger.AnalyticsDispatcher
}

// NewService creates a recipe service.
func NewService(
	repo Repository,
	menus MenuRepository,
	ledgerAccess LedgerAccess,
	ingredients RefChecker,
	txManager tx.Manager,
	audit ledger.AuditTrail,
	analytics ledger.AnalyticsDispatcher,
) *Service {
	return &Service{
		repo:        repo,
		menus:       menus,
		ledger:      ledgerAccess,
		ingredients: ingredients,
		txManager:   txManager,
		audit:       audit,
		analytics:   analytics,
	}
}

// Create validates and stores a recipe with its ingredient lines.
func (s *Service) Create(ctx context.Context, recipe *Recipe) error {
	if err := recipe.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkIngredientRefs(ctx, recipe); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, recipe)
	})
}

// GetByID fetches a recipe with its lines.
func (s *Service) GetByID(ctx context.Context, tenantID, recipeID id.ID) (*Recipe, error) {
	return s.repo.GetByID(ctx, tenantID, recipeID)
}

// List returns recipes matching the filter.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*Recipe], error) {
	return s.repo.List(ctx, tenantID, filter)
}

// Update validates and replaces a recipe and its lines.
func (s *Service) Update(ctx context.Context, recipe *Recipe) error {
	if err := recipe.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkIngredientRefs(ctx, recipe); err != nil {
		return err
	}
	recipe.Touch()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, recipe)
	})
}

// Delete removes a recipe.
func (s *Service) Delete(ctx context.Context, tenantID, recipeID id.ID) error {
	return s.repo.Delete(ctx, tenantID, recipeID)
}

// CreateMenu validates and stores a menu plan.
func (s *Service) CreateMenu(ctx context.Context, menu *MenuPlan) error {
	if err := menu.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkRecipeRefs(ctx, menu); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.menus.Create(ctx, menu)
	})
}

// GetMenu fetches a menu plan with its lines.
func (s *Service) GetMenu(ctx context.Context, tenantID, menuID id.ID) (*MenuPlan, error) {
	return s.menus.GetByID(ctx, tenantID, menuID)
}

// ListMenus returns menu plans matching the filter.
func (s *Service) ListMenus(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*MenuPlan], error) {
	return s.menus.List(ctx, tenantID, filter)
}

// UpdateMenu validates and replaces a menu plan.
func (s *Service) UpdateMenu(ctx context.Context, menu *MenuPlan) error {
	if err := menu.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkRecipeRefs(ctx, menu); err != nil {
		return err
	}
	menu.Touch()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.menus.Update(ctx, menu)
	})
}

// DeleteMenu removes a menu plan.
func (s *Service) DeleteMenu(ctx context.Context, tenantID, menuID id.ID) error {
	return s.menus.Delete(ctx, tenantID, menuID)
}

// Complete deducts stock for cooking a recipe. Quantities scale linearly
// with the requested servings, oldest lots are consumed first, and in
// strict mode any shortage aborts the whole completion with no writes.
// Shortages are a reported outcome, not an error.
func (s *Service) Complete(ctx context.Context, tenantID id.ID, req CompleteRequest) (*CompletionResult, error) {
	if req.Servings <= 0 {
		return nil, apperror.NewValidation("servings must be positive")
	}

	recipe, err := s.repo.GetByID(ctx, tenantID, req.RecipeID)
	if err != nil {
		return nil, err
	}

	required := s.requiredQuantities(recipe, req)

	result := &CompletionResult{
		RecipeID: recipe.ID,
		Servings: req.Servings,
	}
	var events []ledger.UsageEvent

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ingredientIDs := make([]id.ID, 0, len(required))
		for _, line := range recipe.Ingredients {
			if required[line.IngredientID].IsPositive() {
				ingredientIDs = append(ingredientIDs, line.IngredientID)
			}
		}

		lots, err := s.ledger.ListLotsByIngredientsForUpdate(ctx, tenantID, ingredientIDs)
		if err != nil {
			return fmt.Errorf("lock lots: %w", err)
		}

		lotIDs := make([]id.ID, len(lots))
		for i := range lots {
			lotIDs[i] = lots[i].ID
		}
		consumption, err := s.ledger.ConsumptionByLot(ctx, tenantID, lotIDs)
		if err != nil {
			return fmt.Errorf("consumption sums: %w", err)
		}

		lotsByIngredient := make(map[id.ID][]stock.LotStock)
		for i := range lots {
			lot := &lots[i]
			remaining := lot.Remaining(consumption[lot.ID])
			if !remaining.IsPositive() {
				continue
			}
			lotsByIngredient[lot.IngredientID] = append(lotsByIngredient[lot.IngredientID], stock.LotStock{
				LotID:        lot.ID,
				PurchaseDate: lot.PurchaseDate,
				Remaining:    remaining,
			})
		}

		now := time.Now().UTC()
		reason := fmt.Sprintf("Recipe completed: %s", recipe.Name)

		allocations := make(map[id.ID]stock.AllocationResult, len(ingredientIDs))
		for _, ingID := range ingredientIDs {
			alloc := stock.Allocate(required[ingID], lotsByIngredient[ingID])
			allocations[ingID] = alloc
			if !alloc.Satisfied() {
				result.Shortages = append(result.Shortages, Shortage{
					IngredientID: ingID,
					Required:     types.Round2(required[ingID]),
					Available:    types.Round2(alloc.Allocated()),
					Shortage:     types.Round2(alloc.Shortage),
				})
			}
		}

		if len(result.Shortages) > 0 && !req.AllowPartialStock {
			// Strict mode: report shortages and write nothing. The
			// transaction commits empty.
			result.Success = false
			return nil
		}

		for _, ingID := range ingredientIDs {
			for _, a := range allocations[ingID].Allocations {
				ev := ledger.NewUsageEvent(tenantID, a.LotID, a.Quantity, now, reason)
				events = append(events, *ev)
			}
		}

		if len(events) > 0 {
			if err := s.ledger.InsertUsageBatch(ctx, events); err != nil {
				return fmt.Errorf("insert usage events: %w", err)
			}
		}
		result.Success = true
		result.EventsWritten = len(events)

		return s.audit.Record(ctx, "recipe_completed", "recipe", recipe.ID, result)
	})
	if err != nil {
		return nil, err
	}

	if result.Success {
		logger.Info(ctx, "recipe completed",
			"recipe_id", recipe.ID,
			"servings", req.Servings,
			"events", result.EventsWritten,
			"partial", len(result.Shortages) > 0,
		)
		for _, line := range recipe.Ingredients {
			s.analytics.Enqueue(tenantID, line.IngredientID)
		}
	} else {
		logger.Info(ctx, "recipe completion refused, insufficient stock",
			"recipe_id", recipe.ID,
			"servings", req.Servings,
			"shortages", len(result.Shortages),
		)
	}
	return result, nil
}

// requiredQuantities scales recipe lines to the requested servings and
// applies per-ingredient overrides.
func (s *Service) requiredQuantities(recipe *Recipe, req CompleteRequest) map[id.ID]decimal.Decimal {
	scale := decimal.NewFromInt(int64(req.Servings)).Div(decimal.NewFromInt(int64(recipe.Serves)))
	required := make(map[id.ID]decimal.Decimal, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		qty := line.Quantity.Mul(scale)
		if override, ok := req.ActualQuantities[line.IngredientID]; ok {
			qty = override
		}
		required[line.IngredientID] = qty
	}
	return required
}

func (s *Service) checkIngredientRefs(ctx context.Context, recipe *Recipe) error {
	for _, line := range recipe.Ingredients {
		ok, err := s.ingredients.Exists(ctx, recipe.TenantID, line.IngredientID)
		if err != nil {
			return fmt.Errorf("check ingredient: %w", err)
		}
		if !ok {
			return apperror.NewNotFound("ingredient", line.IngredientID.String())
		}
	}
	return nil
}

func (s *Service) checkRecipeRefs(ctx context.Context, menu *MenuPlan) error {
	for _, line := range menu.Lines {
		ok, err := s.repo.Exists(ctx, menu.TenantID, line.RecipeID)
		if err != nil {
			return fmt.Errorf("check recipe: %w", err)
		}
		if !ok {
			return apperror.NewNotFound("recipe", line.RecipeID.String())
		}
	}
	return nil
}
