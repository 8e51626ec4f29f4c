package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/recipes"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/http/v1/dto"
)

// RecipeHandler handles HTTP requests for recipes and menu plans.
type RecipeHandler struct {
	*BaseHandler
	service *recipes.Service
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(base *BaseHandler, service *recipes.Service) *RecipeHandler {
	return &RecipeHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *RecipeHandler) listFilter(c *gin.Context) domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")
	return filter
}

// List handles GET /recipes
func (h *RecipeHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	result, err := h.service.List(ctx, tenantID, h.listFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	recipeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	recipe, err := h.service.GetByID(ctx, tenantID, recipeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, recipe)
}

// Create handles POST /recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateRecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	recipe := req.ToEntity(tenantID)
	if err := h.service.Create(ctx, recipe); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// Update handles PUT /recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	recipeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, tenantID, recipeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(existing)
	if err := h.service.Update(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, existing)
}

// Delete handles DELETE /recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	recipeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, tenantID, recipeID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Complete handles POST /recipes/:id/complete
//
// Success false with shortages is a 200: strict mode refused the
// completion and wrote nothing, which is a reportable outcome rather
// than an error.
func (h *RecipeHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	recipeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteRecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Servings <= 0 {
		h.Error(c, apperror.NewValidation("servings must be positive"))
		return
	}

	result, err := h.service.Complete(ctx, tenantID, recipes.CompleteRequest{
		RecipeID:          recipeID,
		Servings:          req.Servings,
		ActualQuantities:  req.ActualQuantities,
		AllowPartialStock: req.AllowPartialStock,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// --- Menu plans ---

// ListMenus handles GET /menus
func (h *RecipeHandler) ListMenus(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	result, err := h.service.ListMenus(ctx, tenantID, h.listFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// GetMenu handles GET /menus/:id
func (h *RecipeHandler) GetMenu(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	menuID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	menu, err := h.service.GetMenu(ctx, tenantID, menuID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, menu)
}

// CreateMenu handles POST /menus
func (h *RecipeHandler) CreateMenu(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateMenuRequest
	if !h.BindJSON(c, &req) {
		return
	}

	menu := req.ToEntity(tenantID)
	if err := h.service.CreateMenu(ctx, menu); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, menu)
}

// UpdateMenu handles PUT /menus/:id
func (h *RecipeHandler) UpdateMenu(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	menuID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMenuRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetMenu(ctx, tenantID, menuID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(existing)
	if err := h.service.UpdateMenu(ctx, existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, existing)
}

// DeleteMenu handles DELETE /menus/:id
func (h *RecipeHandler) DeleteMenu(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	menuID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteMenu(ctx, tenantID, menuID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
