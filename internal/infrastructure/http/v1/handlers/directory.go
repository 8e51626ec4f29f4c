package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/http/v1/dto"
)

// DirectoryService is the service surface the generic handler drives.
// Satisfied by *domain.DirectoryService[T] and by entity services that
// shadow Create/Update with extra checks.
type DirectoryService[T domain.DirectoryEntity] interface {
	Create(ctx context.Context, e T) error
	GetByID(ctx context.Context, tenantID, entityID id.ID) (T, error)
	List(ctx context.Context, tenantID id.ID, filter domain.ListFilter) (domain.ListResult[T], error)
	Update(ctx context.Context, e T) error
	Delete(ctx context.Context, tenantID, entityID id.ID) error
}

// DirectoryHandler provides generic CRUD handlers for directory entities.
// Entities carry their own JSON tags, so responses serialize the entity
// directly; only requests go through DTOs.
type DirectoryHandler[T domain.DirectoryEntity, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service DirectoryService[T]

	mapCreateDTO func(req CreateDTO, tenantID id.ID) T
	mapUpdateDTO func(req UpdateDTO, existing T) T
}

// DirectoryHandlerConfig configures the directory handler.
type DirectoryHandlerConfig[T domain.DirectoryEntity, CreateDTO any, UpdateDTO any] struct {
	Service      DirectoryService[T]
	MapCreateDTO func(req CreateDTO, tenantID id.ID) T
	MapUpdateDTO func(req UpdateDTO, existing T) T
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler[T domain.DirectoryEntity, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg DirectoryHandlerConfig[T, CreateDTO, UpdateDTO],
) *DirectoryHandler[T, CreateDTO, UpdateDTO] {
	return &DirectoryHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *DirectoryHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "name")

	result, err := h.service.List(ctx, tenantID, filter)
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

// Get handles GET /{entity}/:id - get single entity.
func (h *DirectoryHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	e, err := h.service.GetByID(ctx, tenantID, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, e)
}

// Create handles POST /{entity} - create new entity.
func (h *DirectoryHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	e := h.mapCreateDTO(req, tenantID)
	if err := h.service.Create(ctx, e); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, e)
}

// Update handles PUT /{entity}/:id - update existing entity.
func (h *DirectoryHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, tenantID, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.mapUpdateDTO(req, existing)
	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /{entity}/:id - delete entity.
func (h *DirectoryHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, tenantID, entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
