package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/types"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/recipes"
	"github.com/ItsEgzix/Tasto-backend/pkg/logger"
)

// PriceReader provides the most recent purchase price per ingredient.
type PriceReader interface {
	LatestLotPerIngredient(ctx context.Context, tenantID id.ID, ingredientIDs []id.ID) (map[id.ID]ledger.PurchaseLot, error)
}

// RecipeReader fetches recipes for costing.
type RecipeReader interface {
	GetByID(ctx context.Context, tenantID, recipeID id.ID) (*recipes.Recipe, error)
	GetMany(ctx context.Context, tenantID id.ID, recipeIDs []id.ID) ([]*recipes.Recipe, error)
	List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*recipes.Recipe], error)
}

// MenuReader fetches menu plans for costing.
type MenuReader interface {
	GetByID(ctx context.Context, tenantID, menuID id.ID) (*recipes.MenuPlan, error)
}

// ItemCost is the costed line of one recipe ingredient.
type ItemCost struct {
	IngredientID id.ID           `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Cost         decimal.Decimal `json:"cost"`
	// HasPriceData is false when no priced lot exists for the ingredient;
	// the line then contributes zero to the total.
	HasPriceData bool `json:"hasPriceData"`
}

// RecipeCost is the priced breakdown of a recipe at a serving count.
type RecipeCost struct {
	RecipeID       id.ID           `json:"recipeId"`
	RecipeName     string          `json:"recipeName"`
	Servings       int             `json:"servings"`
	Items          []ItemCost      `json:"items"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	CostPerServing decimal.Decimal `json:"costPerServing"`
}

// MenuLineCost is one recipe's contribution to a menu cost.
type MenuLineCost struct {
	RecipeID   id.ID           `json:"recipeId"`
	RecipeName string          `json:"recipeName"`
	Servings   int             `json:"servings"`
	Cost       decimal.Decimal `json:"cost"`
	// Failed marks a line whose recipe could not be costed; it counts as
	// zero rather than failing the whole menu.
	Failed bool `json:"failed,omitempty"`
}

// MenuCost is the priced summary of a menu plan.
type MenuCost struct {
	MenuID    id.ID           `json:"menuId"`
	MenuName  string          `json:"menuName"`
	Lines     []MenuLineCost  `json:"lines"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// Service prices recipes and menus from ledger purchase history. Pricing
// uses the most recent lot per ingredient, falling back to zero when an
// ingredient has never been purchased with a usable price.
type Service struct {
	prices  PriceReader
	recipes RecipeReader
	menus   MenuReader
}

// NewService creates a costing service.
func NewService(prices PriceReader, recipeReader RecipeReader, menus MenuReader) *Service {
	return &Service{prices: prices, recipes: recipeReader, menus: menus}
}

// RecipeCost prices one recipe scaled to the requested servings. Passing
// servings <= 0 prices the recipe at its base serving count.
func (s *Service) RecipeCost(ctx context.Context, tenantID, recipeID id.ID, servings int) (*RecipeCost, error) {
	recipe, err := s.recipes.GetByID(ctx, tenantID, recipeID)
	if err != nil {
		return nil, err
	}

	ingredientIDs := make([]id.ID, len(recipe.Ingredients))
	for i, line := range recipe.Ingredients {
		ingredientIDs[i] = line.IngredientID
	}
	latest, err := s.prices.LatestLotPerIngredient(ctx, tenantID, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("latest lot prices: %w", err)
	}

	return s.costRecipe(recipe, servings, latest), nil
}

// RecipeCostList prices many recipes with a single price lookup over the
// union of their ingredients.
func (s *Service) RecipeCostList(ctx context.Context, tenantID id.ID, recipeIDs []id.ID) ([]*RecipeCost, error) {
	list, err := s.recipes.GetMany(ctx, tenantID, recipeIDs)
	if err != nil {
		return nil, err
	}

	ingredientSet := make(map[id.ID]bool)
	for _, recipe := range list {
		for _, line := range recipe.Ingredients {
			ingredientSet[line.IngredientID] = true
		}
	}
	ingredientIDs := make([]id.ID, 0, len(ingredientSet))
	for ingID := range ingredientSet {
		ingredientIDs = append(ingredientIDs, ingID)
	}

	latest := map[id.ID]ledger.PurchaseLot{}
	if len(ingredientIDs) > 0 {
		latest, err = s.prices.LatestLotPerIngredient(ctx, tenantID, ingredientIDs)
		if err != nil {
			return nil, fmt.Errorf("latest lot prices: %w", err)
		}
	}

	costs := make([]*RecipeCost, 0, len(list))
	for _, recipe := range list {
		costs = append(costs, s.costRecipe(recipe, 0, latest))
	}
	return costs, nil
}

// MenuCost prices a menu plan. A recipe that fails to cost is logged and
// contributes zero; pricing a menu must not break because one dish has a
// data problem.
func (s *Service) MenuCost(ctx context.Context, tenantID, menuID id.ID) (*MenuCost, error) {
	menu, err := s.menus.GetByID(ctx, tenantID, menuID)
	if err != nil {
		return nil, err
	}

	result := &MenuCost{
		MenuID:    menu.ID,
		MenuName:  menu.Name,
		TotalCost: decimal.Zero,
	}
	for _, line := range menu.Lines {
		cost, err := s.RecipeCost(ctx, tenantID, line.RecipeID, line.Servings)
		if err != nil {
			logger.Warn(ctx, "menu line costing failed, counting as zero",
				"menu_id", menu.ID,
				"recipe_id", line.RecipeID,
				"error", err,
			)
			result.Lines = append(result.Lines, MenuLineCost{
				RecipeID: line.RecipeID,
				Servings: line.Servings,
				Cost:     decimal.Zero,
				Failed:   true,
			})
			continue
		}
		result.Lines = append(result.Lines, MenuLineCost{
			RecipeID:   line.RecipeID,
			RecipeName: cost.RecipeName,
			Servings:   line.Servings,
			Cost:       cost.TotalCost,
		})
		result.TotalCost = result.TotalCost.Add(cost.TotalCost)
	}
	result.TotalCost = types.Round2(result.TotalCost)
	return result, nil
}

func (s *Service) costRecipe(recipe *recipes.Recipe, servings int, latest map[id.ID]ledger.PurchaseLot) *RecipeCost {
	if servings <= 0 {
		servings = recipe.Serves
	}
	scale := decimal.NewFromInt(int64(servings)).Div(decimal.NewFromInt(int64(recipe.Serves)))

	result := &RecipeCost{
		RecipeID:   recipe.ID,
		RecipeName: recipe.Name,
		Servings:   servings,
		Items:      make([]ItemCost, 0, len(recipe.Ingredients)),
	}

	total := decimal.Zero
	for _, line := range recipe.Ingredients {
		qty := line.Quantity.Mul(scale)
		item := ItemCost{
			IngredientID: line.IngredientID,
			Quantity:     types.Round2(qty),
			UnitPrice:    decimal.Zero,
			Cost:         decimal.Zero,
		}
		if lot, ok := latest[line.IngredientID]; ok && lot.HasPriceData() {
			unitPrice := lot.UnitPrice()
			item.UnitPrice = types.Round2(unitPrice)
			item.Cost = types.Round2(qty.Mul(unitPrice))
			item.HasPriceData = true
			total = total.Add(qty.Mul(unitPrice))
		}
		result.Items = append(result.Items, item)
	}

	result.TotalCost = types.Round2(total)
	perServing := types.SafeDiv(total, decimal.NewFromInt(int64(servings)))
	result.CostPerServing = types.Round2(perServing)
	return result
}
