package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/analytics"
)

// AnalyticsHandler handles HTTP requests for analytics reads.
type AnalyticsHandler struct {
	*BaseHandler
	service *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(base *BaseHandler, service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetOverallStatistics handles GET /analytics/statistics
func (h *AnalyticsHandler) GetOverallStatistics(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	stats, err := h.service.CalculateOverallStatistics(ctx, tenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}

// GetIngredientAnalytics handles GET /analytics/ingredients/:id
// Serves the stored row when fresh; a stale row is returned as-is with a
// recompute queued in the background.
func (h *AnalyticsHandler) GetIngredientAnalytics(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	ingredientID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetIngredientAnalytics(ctx, tenantID, ingredientID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// GetValueTrend handles GET /analytics/value-trend?fromDate=...&toDate=...
// Daily purchased value against consumed value over the range, computed
// on demand.
func (h *AnalyticsHandler) GetValueTrend(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	fromStr := c.Query("fromDate")
	toStr := c.Query("toDate")
	if fromStr == "" || toStr == "" {
		h.Error(c, apperror.NewValidation("fromDate and toDate are required"))
		return
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected YYYY-MM-DD"))
		return
	}

	points, err := h.service.ValueTrend(ctx, tenantID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": points})
}

// ListSnapshots handles GET /analytics/snapshots?fromDate=...&toDate=...
func (h *AnalyticsHandler) ListSnapshots(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	fromStr := c.Query("fromDate")
	toStr := c.Query("toDate")
	if fromStr == "" || toStr == "" {
		h.Error(c, apperror.NewValidation("fromDate and toDate are required"))
		return
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected YYYY-MM-DD"))
		return
	}

	snapshots, err := h.service.ListSnapshots(ctx, tenantID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": snapshots})
}

// SaveSnapshot handles POST /analytics/snapshots
// Idempotent per tenant and day; re-posting the same day overwrites.
func (h *AnalyticsHandler) SaveSnapshot(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	day := time.Now().UTC()
	if s := c.Query("date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid date format, expected YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	snapshot, err := h.service.SaveDailySnapshot(ctx, tenantID, day)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}
