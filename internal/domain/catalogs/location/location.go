// Package location provides the storage location directory
// (walk-in, freezer, dry storage and the like).
package location

import (
	"context"

	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
)

// StorageLocation represents a physical storage area lots are kept in.
type StorageLocation struct {
	entity.Directory

	Description *string `db:"description" json:"description,omitempty"`
}

// New creates a new StorageLocation.
func New(tenantID id.ID, name string) *StorageLocation {
	return &StorageLocation{
		Directory: entity.NewDirectory(tenantID, name),
	}
}

// Validate implements entity.Validatable.
func (l *StorageLocation) Validate(ctx context.Context) error {
	return l.Directory.Validate(ctx)
}

// Repository defines the interface for StorageLocation persistence.
type Repository = domain.DirectoryRepository[*StorageLocation]

// Service provides business logic for the StorageLocation directory.
type Service struct {
	*domain.DirectoryService[*StorageLocation]
}

// NewService creates a new StorageLocation service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		DirectoryService: domain.NewDirectoryService(repo, txManager, "storage location"),
	}
}
