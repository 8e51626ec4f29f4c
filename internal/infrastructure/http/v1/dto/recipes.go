package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/recipes"
)

// RecipeLineRequest is one ingredient line of a recipe payload.
type RecipeLineRequest struct {
	IngredientID id.ID           `json:"ingredientId" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateRecipeRequest for creating recipes.
type CreateRecipeRequest struct {
	Name        string              `json:"name" binding:"required"`
	Serves      int                 `json:"serves" binding:"required,min=1"`
	Description *string             `json:"description"`
	Ingredients []RecipeLineRequest `json:"ingredients" binding:"required,min=1"`
}

// ToEntity maps the request to a new Recipe with generated line IDs.
func (r CreateRecipeRequest) ToEntity(tenantID id.ID) *recipes.Recipe {
	recipe := recipes.NewRecipe(tenantID, r.Name, r.Serves)
	recipe.Description = r.Description
	recipe.Ingredients = make([]recipes.RecipeIngredient, len(r.Ingredients))
	for i, line := range r.Ingredients {
		recipe.Ingredients[i] = recipes.RecipeIngredient{
			ID:           id.New(),
			RecipeID:     recipe.ID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		}
	}
	return recipe
}

// UpdateRecipeRequest for updating recipes. Ingredient lines, when present,
// replace the existing set.
type UpdateRecipeRequest struct {
	Name        *string             `json:"name"`
	Serves      *int                `json:"serves"`
	Description *string             `json:"description"`
	Ingredients []RecipeLineRequest `json:"ingredients"`
}

// ApplyTo maps non-nil fields onto an existing Recipe.
func (r UpdateRecipeRequest) ApplyTo(recipe *recipes.Recipe) {
	if r.Name != nil {
		recipe.Name = *r.Name
	}
	if r.Serves != nil {
		recipe.Serves = *r.Serves
	}
	if r.Description != nil {
		recipe.Description = r.Description
	}
	if r.Ingredients != nil {
		recipe.Ingredients = make([]recipes.RecipeIngredient, len(r.Ingredients))
		for i, line := range r.Ingredients {
			recipe.Ingredients[i] = recipes.RecipeIngredient{
				ID:           id.New(),
				RecipeID:     recipe.ID,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
			}
		}
	}
	recipe.Touch()
}

// CompleteRecipeRequest runs a recipe completion against the ledger.
// The recipe ID comes from the URL path.
type CompleteRecipeRequest struct {
	Servings int `json:"servings" binding:"required,min=1"`
	// ActualQuantities overrides the scaled recipe quantity per ingredient.
	ActualQuantities map[id.ID]decimal.Decimal `json:"actualQuantities"`
	// AllowPartialStock deducts whatever is available instead of refusing
	// the whole completion on any shortage.
	AllowPartialStock bool `json:"allowPartialStock"`
}

// MenuLineRequest is one recipe line of a menu payload.
type MenuLineRequest struct {
	RecipeID id.ID `json:"recipeId" binding:"required"`
	Servings int   `json:"servings" binding:"required,min=1"`
}

// CreateMenuRequest for creating menu plans.
type CreateMenuRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description *string           `json:"description"`
	Lines       []MenuLineRequest `json:"lines" binding:"required,min=1"`
}

// ToEntity maps the request to a new MenuPlan with generated line IDs.
func (r CreateMenuRequest) ToEntity(tenantID id.ID) *recipes.MenuPlan {
	menu := recipes.NewMenuPlan(tenantID, r.Name)
	menu.Description = r.Description
	menu.Lines = make([]recipes.MenuLine, len(r.Lines))
	for i, line := range r.Lines {
		menu.Lines[i] = recipes.MenuLine{
			ID:       id.New(),
			MenuID:   menu.ID,
			RecipeID: line.RecipeID,
			Servings: line.Servings,
		}
	}
	return menu
}

// UpdateMenuRequest for updating menu plans. Lines, when present, replace
// the existing set.
type UpdateMenuRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Lines       []MenuLineRequest `json:"lines"`
}

// ApplyTo maps non-nil fields onto an existing MenuPlan.
func (r UpdateMenuRequest) ApplyTo(menu *recipes.MenuPlan) {
	if r.Name != nil {
		menu.Name = *r.Name
	}
	if r.Description != nil {
		menu.Description = r.Description
	}
	if r.Lines != nil {
		menu.Lines = make([]recipes.MenuLine, len(r.Lines))
		for i, line := range r.Lines {
			menu.Lines[i] = recipes.MenuLine{
				ID:       id.New(),
				MenuID:   menu.ID,
				RecipeID: line.RecipeID,
				Servings: line.Servings,
			}
		}
	}
	menu.Touch()
}
