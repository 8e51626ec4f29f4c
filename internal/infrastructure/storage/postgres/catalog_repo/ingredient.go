package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/ingredient"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
)

const ingredientTable = "cat_ingredients"

// IngredientRepo implements ingredient.Repository.
type IngredientRepo struct {
	*BaseDirectoryRepo[*ingredient.Ingredient]
	txManager *postgres.TxManager
}

// NewIngredientRepo creates a new ingredient repository.
func NewIngredientRepo(txManager *postgres.TxManager) *IngredientRepo {
	return &IngredientRepo{
		BaseDirectoryRepo: NewBaseDirectoryRepo(
			txManager,
			ingredientTable,
			postgres.ExtractDBColumns[ingredient.Ingredient](),
			func() *ingredient.Ingredient { return &ingredient.Ingredient{} },
		),
		txManager: txManager,
	}
}

// ListAll returns every ingredient of the tenant, ordered by name.
// Used by stock summaries which always cover the full directory.
func (r *IngredientRepo) ListAll(ctx context.Context, tenantID id.ID) ([]*ingredient.Ingredient, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[ingredient.Ingredient]()...).
		From(ingredientTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ingredient.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list all ingredients: %w", err)
	}

	return items, nil
}
