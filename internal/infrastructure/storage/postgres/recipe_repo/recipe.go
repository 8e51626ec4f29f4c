// Package recipe_repo provides PostgreSQL implementations for recipe and
// menu plan repositories. Headers and lines are saved together; callers
// wrap writes in a transaction.
package recipe_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/recipes"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
)

const (
	recipesTable     = "recipes"
	recipeLinesTable = "recipe_ingredients"
)

// Compile-time check that RecipeRepo implements recipes.Repository.
var _ recipes.Repository = (*RecipeRepo)(nil)

// RecipeRepo implements recipes.Repository.
type RecipeRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// NewRecipeRepo creates a new recipe repository.
func NewRecipeRepo(txManager *postgres.TxManager) *RecipeRepo {
	return &RecipeRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[recipes.Recipe](),
	}
}

func (r *RecipeRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the recipe header and its lines.
func (r *RecipeRepo) Create(ctx context.Context, recipe *recipes.Recipe) error {
	q := r.builder().
		Insert(recipesTable).
		SetMap(postgres.StructToMap(recipe))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}

	return r.saveLines(ctx, recipe.ID, recipe.Ingredients)
}

// GetByID retrieves a recipe with its lines.
func (r *RecipeRepo) GetByID(ctx context.Context, tenantID, recipeID id.ID) (*recipes.Recipe, error) {
	q := r.builder().
		Select(r.cols...).
		From(recipesTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": recipeID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recipe recipes.Recipe
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &recipe, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("recipe", recipeID.String())
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	lines, err := r.linesFor(ctx, []id.ID{recipeID})
	if err != nil {
		return nil, err
	}
	recipe.Ingredients = lines[recipeID]
	return &recipe, nil
}

// GetMany fetches recipes with lines in one round-trip pair.
func (r *RecipeRepo) GetMany(ctx context.Context, tenantID id.ID, recipeIDs []id.ID) ([]*recipes.Recipe, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}

	q := r.builder().
		Select(r.cols...).
		From(recipesTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": recipeIDs}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*recipes.Recipe
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get recipes: %w", err)
	}

	ids := make([]id.ID, len(items))
	for i, recipe := range items {
		ids[i] = recipe.ID
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, recipe := range items {
		recipe.Ingredients = lines[recipe.ID]
	}
	return items, nil
}

// List retrieves recipes with filtering and pagination. Lines are loaded
// for the returned page in one extra query.
func (r *RecipeRepo) List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*recipes.Recipe], error) {
	result := domain.ListResult[*recipes.Recipe]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(r.cols...).
		From(recipesTable).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("name ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list recipes: %w", err)
	}

	ids := make([]id.ID, len(result.Items))
	for i, recipe := range result.Items {
		ids[i] = recipe.ID
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return result, err
	}
	for _, recipe := range result.Items {
		recipe.Ingredients = lines[recipe.ID]
	}

	return result, nil
}

// Update replaces the recipe header and its lines.
func (r *RecipeRepo) Update(ctx context.Context, recipe *recipes.Recipe) error {
	data := postgres.StructToMap(recipe)
	delete(data, "id")
	delete(data, "tenant_id")
	delete(data, "created_at")

	q := r.builder().
		Update(recipesTable).
		SetMap(data).
		Where(squirrel.Eq{"tenant_id": recipe.TenantID}).
		Where(squirrel.Eq{"id": recipe.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("recipe", recipe.ID.String())
	}

	return r.saveLines(ctx, recipe.ID, recipe.Ingredients)
}

// Delete removes the recipe; lines go with it via cascade.
func (r *RecipeRepo) Delete(ctx context.Context, tenantID, recipeID id.ID) error {
	q := r.builder().
		Delete(recipesTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": recipeID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("recipe", recipeID.String())
	}
	return nil
}

// Exists checks if the recipe exists within the tenant.
func (r *RecipeRepo) Exists(ctx context.Context, tenantID, recipeID id.ID) (bool, error) {
	q := r.builder().
		Select("1").
		From(recipesTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": recipeID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

// saveLines replaces the recipe's ingredient lines. Delete and insert go
// to the server as one batch inside the caller's transaction.
func (r *RecipeRepo) saveLines(ctx context.Context, recipeID id.ID, lines []recipes.RecipeIngredient) error {
	queries := []postgres.BatchQuery{{
		SQL:  "DELETE FROM " + recipeLinesTable + " WHERE recipe_id = $1",
		Args: []any{recipeID},
	}}

	if len(lines) > 0 {
		q := r.builder().
			Insert(recipeLinesTable).
			Columns("id", "recipe_id", "ingredient_id", "quantity")

		for _, line := range lines {
			lineID := line.ID
			if id.IsNil(lineID) {
				lineID = id.New()
			}
			q = q.Values(lineID, recipeID, line.IngredientID, line.Quantity)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert lines: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	executor := postgres.NewBatchExecutor(r.txManager)
	if err := executor.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("save lines: %w", err)
	}
	return nil
}

// linesFor loads ingredient lines for many recipes in one query.
func (r *RecipeRepo) linesFor(ctx context.Context, recipeIDs []id.ID) (map[id.ID][]recipes.RecipeIngredient, error) {
	if len(recipeIDs) == 0 {
		return map[id.ID][]recipes.RecipeIngredient{}, nil
	}

	q := r.builder().
		Select("id", "recipe_id", "ingredient_id", "quantity").
		From(recipeLinesTable).
		Where(squirrel.Eq{"recipe_id": recipeIDs}).
		OrderBy("recipe_id", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []recipes.RecipeIngredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	result := make(map[id.ID][]recipes.RecipeIngredient, len(recipeIDs))
	for _, line := range lines {
		result[line.RecipeID] = append(result[line.RecipeID], line)
	}
	return result, nil
}
