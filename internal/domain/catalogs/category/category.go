// Package category provides the ingredient category directory.
package category

import (
	"context"

	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
)

// Category groups ingredients for analytics distributions.
type Category struct {
	entity.Directory

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// New creates a new Category.
func New(tenantID id.ID, name string) *Category {
	return &Category{
		Directory: entity.NewDirectory(tenantID, name),
	}
}

// Validate implements entity.Validatable.
func (c *Category) Validate(ctx context.Context) error {
	return c.Directory.Validate(ctx)
}

// Repository defines the interface for Category persistence.
type Repository = domain.DirectoryRepository[*Category]

// Service provides business logic for the Category directory.
type Service struct {
	*domain.DirectoryService[*Category]
}

// NewService creates a new Category service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		DirectoryService: domain.NewDirectoryService(repo, txManager, "category"),
	}
}
