package catalog_repo

import (
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/category"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/location"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/supplier"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/catalogs/unit"
	"github.com/ItsEgzix/Tasto-backend/internal/infrastructure/storage/postgres"
)

const (
	categoryTable = "cat_categories"
	unitTable     = "cat_units"
	supplierTable = "cat_suppliers"
	locationTable = "cat_storage_locations"
)

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseDirectoryRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseDirectoryRepo: NewBaseDirectoryRepo(
			txManager,
			categoryTable,
			postgres.ExtractDBColumns[category.Category](),
			func() *category.Category { return &category.Category{} },
		),
	}
}

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	*BaseDirectoryRepo[*unit.Unit]
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txManager *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		BaseDirectoryRepo: NewBaseDirectoryRepo(
			txManager,
			unitTable,
			postgres.ExtractDBColumns[unit.Unit](),
			func() *unit.Unit { return &unit.Unit{} },
		),
	}
}

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseDirectoryRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseDirectoryRepo: NewBaseDirectoryRepo(
			txManager,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// LocationRepo implements location.Repository.
type LocationRepo struct {
	*BaseDirectoryRepo[*location.StorageLocation]
}

// NewLocationRepo creates a new storage location repository.
func NewLocationRepo(txManager *postgres.TxManager) *LocationRepo {
	return &LocationRepo{
		BaseDirectoryRepo: NewBaseDirectoryRepo(
			txManager,
			locationTable,
			postgres.ExtractDBColumns[location.StorageLocation](),
			func() *location.StorageLocation { return &location.StorageLocation{} },
		),
	}
}
