package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/category"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/ingredient"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/location"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/supplier"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/unit"
)

// --- Category ---

// CreateCategoryRequest for creating categories.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity maps the request to a new Category.
func (r CreateCategoryRequest) ToEntity(tenantID id.ID) *category.Category {
	c := category.New(tenantID, r.Name)
	c.Description = r.Description
	return c
}

// UpdateCategoryRequest for updating categories.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ApplyTo maps non-nil fields onto an existing Category.
func (r UpdateCategoryRequest) ApplyTo(c *category.Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	c.Touch()
}

// --- Unit ---

// CreateUnitRequest for creating measurement units.
type CreateUnitRequest struct {
	Name   string `json:"name" binding:"required"`
	Symbol string `json:"symbol" binding:"required"`
}

// ToEntity maps the request to a new Unit.
func (r CreateUnitRequest) ToEntity(tenantID id.ID) *unit.Unit {
	return unit.New(tenantID, r.Name, r.Symbol)
}

// UpdateUnitRequest for updating measurement units.
type UpdateUnitRequest struct {
	Name   *string `json:"name"`
	Symbol *string `json:"symbol"`
}

// ApplyTo maps non-nil fields onto an existing Unit.
func (r UpdateUnitRequest) ApplyTo(u *unit.Unit) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Symbol != nil {
		u.Symbol = *r.Symbol
	}
	u.Touch()
}

// --- Supplier ---

// CreateSupplierRequest for creating suppliers.
type CreateSupplierRequest struct {
	Name        string  `json:"name" binding:"required"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
}

// ToEntity maps the request to a new Supplier.
func (r CreateSupplierRequest) ToEntity(tenantID id.ID) *supplier.Supplier {
	s := supplier.New(tenantID, r.Name)
	s.ContactName = r.ContactName
	s.Phone = r.Phone
	s.Email = r.Email
	return s
}

// UpdateSupplierRequest for updating suppliers.
type UpdateSupplierRequest struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contactName"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
}

// ApplyTo maps non-nil fields onto an existing Supplier.
func (r UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.ContactName != nil {
		s.ContactName = r.ContactName
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.Email != nil {
		s.Email = r.Email
	}
	s.Touch()
}

// --- Storage Location ---

// CreateLocationRequest for creating storage locations.
type CreateLocationRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity maps the request to a new StorageLocation.
func (r CreateLocationRequest) ToEntity(tenantID id.ID) *location.StorageLocation {
	l := location.New(tenantID, r.Name)
	l.Description = r.Description
	return l
}

// UpdateLocationRequest for updating storage locations.
type UpdateLocationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ApplyTo maps non-nil fields onto an existing StorageLocation.
func (r UpdateLocationRequest) ApplyTo(l *location.StorageLocation) {
	if r.Name != nil {
		l.Name = *r.Name
	}
	if r.Description != nil {
		l.Description = r.Description
	}
	l.Touch()
}

// --- Ingredient ---

// CreateIngredientRequest for creating ingredients.
type CreateIngredientRequest struct {
	Name             string           `json:"name" binding:"required"`
	CategoryID       id.ID            `json:"categoryId" binding:"required"`
	UnitID           id.ID            `json:"unitId" binding:"required"`
	RestockThreshold *decimal.Decimal `json:"restockThreshold"`
}

// ToEntity maps the request to a new Ingredient.
func (r CreateIngredientRequest) ToEntity(tenantID id.ID) *ingredient.Ingredient {
	ing := ingredient.New(tenantID, r.Name, r.CategoryID, r.UnitID)
	if r.RestockThreshold != nil {
		ing.RestockThreshold = *r.RestockThreshold
	}
	return ing
}

// UpdateIngredientRequest for updating ingredients.
type UpdateIngredientRequest struct {
	Name             *string          `json:"name"`
	CategoryID       *id.ID           `json:"categoryId"`
	UnitID           *id.ID           `json:"unitId"`
	RestockThreshold *decimal.Decimal `json:"restockThreshold"`
}

// ApplyTo maps non-nil fields onto an existing Ingredient.
func (r UpdateIngredientRequest) ApplyTo(ing *ingredient.Ingredient) {
	if r.Name != nil {
		ing.Name = *r.Name
	}
	if r.CategoryID != nil {
		ing.CategoryID = *r.CategoryID
	}
	if r.UnitID != nil {
		ing.UnitID = *r.UnitID
	}
	if r.RestockThreshold != nil {
		ing.RestockThreshold = *r.RestockThreshold
	}
	ing.Touch()
}
