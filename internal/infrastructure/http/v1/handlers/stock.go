package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/stock"
)

// StockHandler handles HTTP requests for derived stock state.
type StockHandler struct {
	*BaseHandler
	calc *stock.Calculator
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, calc *stock.Calculator) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		calc:        calc,
	}
}

// GetRemaining handles GET /stock/lots/:id/remaining
func (h *StockHandler) GetRemaining(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	lotID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	remaining, err := h.calc.RemainingQuantity(ctx, tenantID, lotID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"lotId":     lotID.String(),
		"remaining": remaining,
	})
}

// GetRemainingBatch handles GET /stock/lots/remaining?ids=a,b,c
func (h *StockHandler) GetRemainingBatch(c *gin.Context) {
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
	lotIDs := make([]id.ID, 0, len(parts))
	for _, p := range parts {
		parsed, err := id.Parse(strings.TrimSpace(p))
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid lot id format").WithDetail("id", p))
			return
		}
		lotIDs = append(lotIDs, parsed)
	}

	remaining, err := h.calc.RemainingBatch(ctx, tenantID, lotIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"remaining": remaining})
}

// GetStockByIngredient handles GET /stock/ingredients
func (h *StockHandler) GetStockByIngredient(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	items, err := h.calc.StockByIngredient(ctx, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// GetLowStock handles GET /stock/low
func (h *StockHandler) GetLowStock(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	items, err := h.calc.LowStock(ctx, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// GetExpiring handles GET /stock/expiring?withinDays=7
func (h *StockHandler) GetExpiring(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	days := h.ParseIntQuery(c, "withinDays", 7)
	if days <= 0 {
		h.Error(c, apperror.NewValidation("withinDays must be positive"))
		return
	}

	items, err := h.calc.ExpiringStock(ctx, tenantID, time.Duration(days)*24*time.Hour)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}
