// Package entity provides base types shared by all tenant-scoped entities.
package entity

import (
	"context"
	"time"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for all entities.
// Every row is exclusively scoped to one tenant; no cross-tenant reads
// are permitted at any layer.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// TenantID is the owning account scope
	TenantID id.ID `db:"tenant_id" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID and timestamps.
func NewBaseEntity(tenantID id.ID) BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (b *BaseEntity) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// GetID returns the entity ID.
func (b *BaseEntity) GetID() id.ID { return b.ID }

// GetTenantID returns the owning tenant ID.
func (b *BaseEntity) GetTenantID() id.ID { return b.TenantID }

// Directory is the base type for tenant-scoped reference data with a
// unique name per tenant (categories, units, suppliers, storage locations).
type Directory struct {
	BaseEntity

	// Name is the display name (unique within tenant)
	Name string `db:"name" json:"name"`
}

// NewDirectory creates a new Directory entry with generated ID.
func NewDirectory(tenantID id.ID, name string) Directory {
	return Directory{
		BaseEntity: NewBaseEntity(tenantID),
		Name:       name,
	}
}

// GetName returns the display name.
func (d *Directory) GetName() string { return d.Name }

// Validate implements Validatable.
func (d *Directory) Validate(ctx context.Context) error {
	if d.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(d.TenantID) {
		return apperror.NewValidation("tenant id is required").
			WithDetail("field", "tenantId")
	}
	return nil
}
