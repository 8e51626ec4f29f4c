// Package supplier provides the supplier directory.
package supplier

import (
	"context"

	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
)

// Supplier represents a vendor purchase lots are bought from.
type Supplier struct {
	entity.Directory

	ContactName *string `db:"contact_name" json:"contactName,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
}

// New creates a new Supplier.
func New(tenantID id.ID, name string) *Supplier {
	return &Supplier{
		Directory: entity.NewDirectory(tenantID, name),
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	return s.Directory.Validate(ctx)
}

// Repository defines the interface for Supplier persistence.
type Repository = domain.DirectoryRepository[*Supplier]

// Service provides business logic for the Supplier directory.
type Service struct {
	*domain.DirectoryService[*Supplier]
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		DirectoryService: domain.NewDirectoryService(repo, txManager, "supplier"),
	}
}
