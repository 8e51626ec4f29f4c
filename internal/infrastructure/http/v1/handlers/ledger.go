package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/http/v1/dto"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
)

// HistoryReader retrieves audit history for a ledger entity.
type HistoryReader interface {
	EntityHistory(ctx context.Context, tenantID, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// LedgerHandler handles HTTP requests for the inventory ledger.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
	repo    ledger.Repository
	history HistoryReader
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service, repo ledger.Repository, history HistoryReader) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
		repo:        repo,
		history:     history,
	}
}

// RecordPurchase handles POST /ledger/purchases
func (h *LedgerHandler) RecordPurchase(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.RecordPurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot := req.ToEntity(tenantID)
	if err := h.service.RecordPurchase(ctx, lot); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, lot)
}

// RecordUsage handles POST /ledger/usage
func (h *LedgerHandler) RecordUsage(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.RecordUsageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ev := req.ToEntity(tenantID)
	if err := h.service.RecordUsage(ctx, ev); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ev)
}

// RecordSpoilage handles POST /ledger/spoilage
func (h *LedgerHandler) RecordSpoilage(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.RecordSpoilageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ev := req.ToEntity(tenantID)
	if err := h.service.RecordSpoilage(ctx, ev); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ev)
}

// ListLots handles GET /ledger/lots
func (h *LedgerHandler) ListLots(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	filter := ledger.LotFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if s := c.Query("ingredientId"); s != "" {
		parsed, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid ingredientId format"))
			return
		}
		filter.IngredientID = &parsed
	}
	if s := c.Query("locationId"); s != "" {
		parsed, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid locationId format"))
			return
		}
		filter.LocationID = &parsed
	}
	if s := c.Query("supplierId"); s != "" {
		parsed, err := id.Parse(s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &parsed
	}
	if s := c.Query("fromDate"); s != "" {
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			filter.FromDate = &parsed
		}
	}
	if s := c.Query("toDate"); s != "" {
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			filter.ToDate = &parsed
		}
	}

	lots, err := h.repo.ListLots(ctx, tenantID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      lots,
		TotalCount: int64(len(lots)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// GetLot handles GET /ledger/lots/:id
func (h *LedgerHandler) GetLot(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	lotID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	lot, err := h.repo.GetLot(ctx, tenantID, lotID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lot)
}

// LotHistory handles GET /ledger/lots/:id/history
func (h *LedgerHandler) LotHistory(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	lotID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)

	entries, err := h.history.EntityHistory(ctx, tenantID.String(), "purchase_lot", lotID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AuditEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = dto.AuditEntryResponse{
			ID:         e.ID.String(),
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID.String(),
			UserID:     e.UserID,
			CreatedAt:  e.CreatedAt,
		}
		if len(e.Payload) > 0 {
			var payload any
			if err := json.Unmarshal(e.Payload, &payload); err == nil {
				items[i].Payload = payload
			}
		}
	}

	h.OK(c, gin.H{"items": items})
}
