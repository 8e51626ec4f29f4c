// Package unit provides the measurement unit directory.
// Units describe the purchase-unit scale ingredient quantities are recorded in.
package unit

import (
	"context"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/entity"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
	"github.com/ItsEgzix/Tasto-backend/internal/domain"
)

// Unit represents a measurement unit.
type Unit struct {
	entity.Directory

	// Symbol is the short symbol (e.g., "kg", "l", "pcs")
	Symbol string `db:"symbol" json:"symbol"`
}

// New creates a new Unit.
func New(tenantID id.ID, name, symbol string) *Unit {
	return &Unit{
		Directory: entity.NewDirectory(tenantID, name),
		Symbol:    symbol,
	}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Directory.Validate(ctx); err != nil {
		return err
	}
	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}
	return nil
}

// Repository defines the interface for Unit persistence.
type Repository = domain.DirectoryRepository[*Unit]

// Service provides business logic for the Unit directory.
type Service struct {
	*domain.DirectoryService[*Unit]
}

// NewService creates a new Unit service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		DirectoryService: domain.NewDirectoryService(repo, txManager, "unit"),
	}
}
