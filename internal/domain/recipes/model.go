package recipes

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

// RecipeIngredient is one line of a recipe: an ingredient and the quantity
// needed for the recipe's base number of servings.
type RecipeIngredient struct {
	ID           id.ID           `db:"id" json:"id"`
	RecipeID     id.ID           `db:"recipe_id" json:"recipeId"`
	IngredientID id.ID           `db:"ingredient_id" json:"ingredientId"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
}

// Recipe is a dish definition: a name, how many servings the base quantities
// produce, and the ingredient lines.
type Recipe struct {
	entity.Directory
	Serves      int                `db:"serves" json:"serves"`
	Description *string            `db:"description" json:"description,omitempty"`
	Ingredients []RecipeIngredient `db:"-" json:"ingredients"`
}

// NewRecipe creates a recipe with a generated ID.
func NewRecipe(tenantID id.ID, name string, serves int) *Recipe {
	return &Recipe{
		Directory: entity.NewDirectory(tenantID, name),
		Serves:    serves,
	}
}

// Validate checks recipe fields and ingredient lines.
func (r *Recipe) Validate(ctx context.Context) error {
	if err := r.Directory.Validate(ctx); err != nil {
		return err
	}
	if r.Serves <= 0 {
		return apperror.NewValidation("serves must be positive")
	}
	if len(r.Ingredients) == 0 {
		return apperror.NewValidation("recipe must have at least one ingredient")
	}
	seen := make(map[id.ID]bool, len(r.Ingredients))
	for i := range r.Ingredients {
		line := &r.Ingredients[i]
		if id.IsNil(line.IngredientID) {
			return apperror.NewValidation("ingredient is required on every recipe line")
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("ingredient quantity must be positive")
		}
		if seen[line.IngredientID] {
			return apperror.NewValidation("duplicate ingredient in recipe")
		}
		seen[line.IngredientID] = true
	}
	return nil
}

// MenuLine is one entry of a menu plan: a recipe and how many servings of it
// the plan calls for.
type MenuLine struct {
	ID       id.ID `db:"id" json:"id"`
	MenuID   id.ID `db:"menu_id" json:"menuId"`
	RecipeID id.ID `db:"recipe_id" json:"recipeId"`
	Servings int   `db:"servings" json:"servings"`
}

// MenuPlan groups recipes into a priced menu.
type MenuPlan struct {
	entity.Directory
	Description *string    `db:"description" json:"description,omitempty"`
	Lines       []MenuLine `db:"-" json:"lines"`
}

// NewMenuPlan creates a menu plan with a generated ID.
func NewMenuPlan(tenantID id.ID, name string) *MenuPlan {
	return &MenuPlan{Directory: entity.NewDirectory(tenantID, name)}
}

// Validate checks menu fields and lines.
func (m *MenuPlan) Validate(ctx context.Context) error {
	if err := m.Directory.Validate(ctx); err != nil {
		return err
	}
	if len(m.Lines) == 0 {
		return apperror.NewValidation("menu must have at least one recipe")
	}
	for i := range m.Lines {
		line := &m.Lines[i]
		if id.IsNil(line.RecipeID) {
			return apperror.NewValidation("recipe is required on every menu line")
		}
		if line.Servings <= 0 {
			return apperror.NewValidation("menu line servings must be positive")
		}
	}
	return nil
}
