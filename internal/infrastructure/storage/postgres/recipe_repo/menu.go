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
	menusTable     = "menu_plans"
	menuLinesTable = "menu_plan_lines"
)

// Compile-time check that MenuRepo implements recipes.MenuRepository.
var _ recipes.MenuRepository = (*MenuRepo)(nil)

// MenuRepo implements recipes.MenuRepository.
type MenuRepo struct {
	txManager *postgres.TxManager
	cols      []string
}

// NewMenuRepo creates a new menu plan repository.
func NewMenuRepo(txManager *postgres.TxManager) *MenuRepo {
	return &MenuRepo{
		txManager: txManager,
		cols:      postgres.ExtractDBColumns[recipes.MenuPlan](),
	}
}

func (r *MenuRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the menu header and its lines.
func (r *MenuRepo) Create(ctx context.Context, menu *recipes.MenuPlan) error {
	q := r.builder().
		Insert(menusTable).
		SetMap(postgres.StructToMap(menu))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert menu: %w", err)
	}

	return r.saveLines(ctx, menu.ID, menu.Lines)
}

// GetByID retrieves a menu plan with its lines.
func (r *MenuRepo) GetByID(ctx context.Context, tenantID, menuID id.ID) (*recipes.MenuPlan, error) {
	q := r.builder().
		Select(r.cols...).
		From(menusTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": menuID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var menu recipes.MenuPlan
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &menu, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("menu plan", menuID.String())
		}
		return nil, fmt.Errorf("get menu: %w", err)
	}

	lines, err := r.linesFor(ctx, menuID)
	if err != nil {
		return nil, err
	}
	menu.Lines = lines
	return &menu, nil
}

// List retrieves menu plans with filtering and pagination.
func (r *MenuRepo) List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[*recipes.MenuPlan], error) {
	result := domain.ListResult[*recipes.MenuPlan]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(r.cols...).
		From(menusTable).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
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
		return result, fmt.Errorf("list menus: %w", err)
	}

	for _, menu := range result.Items {
		lines, err := r.linesFor(ctx, menu.ID)
		if err != nil {
			return result, err
		}
		menu.Lines = lines
	}

	return result, nil
}

// Update replaces the menu header and its lines.
func (r *MenuRepo) Update(ctx context.Context, menu *recipes.MenuPlan) error {
	data := postgres.StructToMap(menu)
	delete(data, "id")
	delete(data, "tenant_id")
	delete(data, "created_at")

	q := r.builder().
		Update(menusTable).
		SetMap(data).
		Where(squirrel.Eq{"tenant_id": menu.TenantID}).
		Where(squirrel.Eq{"id": menu.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update menu: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("menu plan", menu.ID.String())
	}

	return r.saveLines(ctx, menu.ID, menu.Lines)
}

// Delete removes the menu plan; lines go with it via cascade.
func (r *MenuRepo) Delete(ctx context.Context, tenantID, menuID id.ID) error {
	q := r.builder().
		Delete(menusTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"id": menuID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("menu plan", menuID.String())
	}
	return nil
}

func (r *MenuRepo) saveLines(ctx context.Context, menuID id.ID, lines []recipes.MenuLine) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + menuLinesTable + " WHERE menu_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, menuID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().
		Insert(menuLinesTable).
		Columns("id", "menu_id", "recipe_id", "servings")

	for _, line := range lines {
		lineID := line.ID
		if id.IsNil(lineID) {
			lineID = id.New()
		}
		q = q.Values(lineID, menuID, line.RecipeID, line.Servings)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

func (r *MenuRepo) linesFor(ctx context.Context, menuID id.ID) ([]recipes.MenuLine, error) {
	q := r.builder().
		Select("id", "menu_id", "recipe_id", "servings").
		From(menuLinesTable).
		Where(squirrel.Eq{"menu_id": menuID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []recipes.MenuLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}
