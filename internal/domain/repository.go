// Package domain provides shared business logic interfaces and types.
package domain

import (
	"context"

	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search filters by name substring (case-insensitive)
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// DirectoryEntity is implemented by tenant-scoped reference entities with
// a unique name per tenant.
type DirectoryEntity interface {
	entity.Validatable
	GetID() id.ID
	GetTenantID() id.ID
	GetName() string
}

// DirectoryRepository defines CRUD operations for directory entities.
// All operations are scoped by tenant; implementations must never return
// rows belonging to another tenant.
type DirectoryRepository[T DirectoryEntity] interface {
	// Create inserts a new entity
	Create(ctx context.Context, e T) error

	// GetByID retrieves entity by ID within the tenant
	GetByID(ctx context.Context, tenantID, entityID id.ID) (T, error)

	// FindByName retrieves entity by name (unique within tenant)
	FindByName(ctx context.Context, tenantID id.ID, name string) (T, error)

	// Exists reports whether the entity exists within the tenant
	Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error)

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, tenantID id.ID, filter ListFilter) (ListResult[T], error)

	// Update modifies an existing entity
	Update(ctx context.Context, e T) error

	// Delete removes the entity
	Delete(ctx context.Context, tenantID, entityID id.ID) error
}
