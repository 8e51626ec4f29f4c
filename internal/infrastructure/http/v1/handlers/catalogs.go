package handlers

import (
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/category"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/ingredient"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/location"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/supplier"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/unit"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/http/v1/dto"
)

// CategoryHTTPHandler is the generic directory handler bound to categories.
type CategoryHTTPHandler = DirectoryHandler[
	*category.Category,
	dto.CreateCategoryRequest,
	dto.UpdateCategoryRequest,
]

// NewCategoryHandler creates a configured category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHTTPHandler {
	return NewDirectoryHandler(base, DirectoryHandlerConfig[
		*category.Category,
		dto.CreateCategoryRequest,
		dto.UpdateCategoryRequest,
	]{
		Service: service,
		MapCreateDTO: func(req dto.CreateCategoryRequest, tenantID id.ID) *category.Category {
			return req.ToEntity(tenantID)
		},
		MapUpdateDTO: func(req dto.UpdateCategoryRequest, existing *category.Category) *category.Category {
			req.ApplyTo(existing)
			return existing
		},
	})
}

// UnitHTTPHandler is the generic directory handler bound to units.
type UnitHTTPHandler = DirectoryHandler[
	*unit.Unit,
	dto.CreateUnitRequest,
	dto.UpdateUnitRequest,
]

// NewUnitHandler creates a configured unit handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHTTPHandler {
	return NewDirectoryHandler(base, DirectoryHandlerConfig[
		*unit.Unit,
		dto.CreateUnitRequest,
		dto.UpdateUnitRequest,
	]{
		Service: service,
		MapCreateDTO: func(req dto.CreateUnitRequest, tenantID id.ID) *unit.Unit {
			return req.ToEntity(tenantID)
		},
		MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
			req.ApplyTo(existing)
			return existing
		},
	})
}

// SupplierHTTPHandler is the generic directory handler bound to suppliers.
type SupplierHTTPHandler = DirectoryHandler[
	*supplier.Supplier,
	dto.CreateSupplierRequest,
	dto.UpdateSupplierRequest,
]

// NewSupplierHandler creates a configured supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHTTPHandler {
	return NewDirectoryHandler(base, DirectoryHandlerConfig[
		*supplier.Supplier,
		dto.CreateSupplierRequest,
		dto.UpdateSupplierRequest,
	]{
		Service: service,
		MapCreateDTO: func(req dto.CreateSupplierRequest, tenantID id.ID) *supplier.Supplier {
			return req.ToEntity(tenantID)
		},
		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
			req.ApplyTo(existing)
			return existing
		},
	})
}

// LocationHTTPHandler is the generic directory handler bound to storage locations.
type LocationHTTPHandler = DirectoryHandler[
	*location.StorageLocation,
	dto.CreateLocationRequest,
	dto.UpdateLocationRequest,
]

// NewLocationHandler creates a configured storage location handler.
func NewLocationHandler(base *BaseHandler, service *location.Service) *LocationHTTPHandler {
	return NewDirectoryHandler(base, DirectoryHandlerConfig[
		*location.StorageLocation,
		dto.CreateLocationRequest,
		dto.UpdateLocationRequest,
	]{
		Service: service,
		MapCreateDTO: func(req dto.CreateLocationRequest, tenantID id.ID) *location.StorageLocation {
			return req.ToEntity(tenantID)
		},
		MapUpdateDTO: func(req dto.UpdateLocationRequest, existing *location.StorageLocation) *location.StorageLocation {
			req.ApplyTo(existing)
			return existing
		},
	})
}

// IngredientHTTPHandler is the generic directory handler bound to ingredients.
type IngredientHTTPHandler = DirectoryHandler[
	*ingredient.Ingredient,
	dto.CreateIngredientRequest,
	dto.UpdateIngredientRequest,
]

// NewIngredientHandler creates a configured ingredient handler.
// The ingredient service's Create/Update carry category/unit reference
// checks; the generic handler picks them up through the interface.
func NewIngredientHandler(base *BaseHandler, service *ingredient.Service) *IngredientHTTPHandler {
	return NewDirectoryHandler(base, DirectoryHandlerConfig[
		*ingredient.Ingredient,
		dto.CreateIngredientRequest,
		dto.UpdateIngredientRequest,
	]{
		Service: service,
		MapCreateDTO: func(req dto.CreateIngredientRequest, tenantID id.ID) *ingredient.Ingredient {
			return req.ToEntity(tenantID)
		},
		MapUpdateDTO: func(req dto.UpdateIngredientRequest, existing *ingredient.Ingredient) *ingredient.Ingredient {
			req.ApplyTo(existing)
			return existing
		},
	})
}
