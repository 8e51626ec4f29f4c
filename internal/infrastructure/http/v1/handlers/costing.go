package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/costing"
)

// CostingHandler handles HTTP requests for the cost engine.
type CostingHandler struct {
	*BaseHandler
	service *costing.Service
}

// NewCostingHandler creates a new costing handler.
func NewCostingHandler(base *BaseHandler, service *costing.Service) *CostingHandler {
	return &CostingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetRecipeCost handles GET /costing/recipes/:id?servings=N
// Servings defaults to the recipe's base serving count.
func (h *CostingHandler) GetRecipeCost(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	recipeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	servings := h.ParseIntQuery(c, "servings", 0)

	cost, err := h.service.RecipeCost(ctx, tenantID, recipeID, servings)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cost)
}

// GetRecipeCosts handles GET /costing/recipes?ids=a,b,c
// One batched price lookup covers every recipe in the list.
func (h *CostingHandler) GetRecipeCosts(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	raw := c.Query("ids")
	if raw == "" {
		h.Error(c, apperror.NewValidation("ids is required"))
		return
	}

	parts := strings.Split(raw, ",")
	recipeIDs := make([]id.ID, 0, len(parts))
	for _, p := range parts {
		parsed, err := id.Parse(strings.TrimSpace(p))
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid recipe id format").WithDetail("id", p))
			return
		}
		recipeIDs = append(recipeIDs, parsed)
	}

	costs, err := h.service.RecipeCostList(ctx, tenantID, recipeIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": costs})
}

// GetMenuCost handles GET /costing/menus/:id
func (h *CostingHandler) GetMenuCost(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	menuID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	cost, err := h.service.MenuCost(ctx, tenantID, menuID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cost)
}
