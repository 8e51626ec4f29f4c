package domain

import (
	"context"
	"fmt"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
)

// DirectoryService provides common business logic for directory entities.
// Entity-specific services embed it and add their own methods.
type DirectoryService[T DirectoryEntity] struct {
	repo      DirectoryRepository[T]
	txManager tx.Manager

	// entityName for error messages
	entityName string
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService[T DirectoryEntity](repo DirectoryRepository[T], txManager tx.Manager, entityName string) *DirectoryService[T] {
	return &DirectoryService[T]{
		repo:       repo,
		txManager:  txManager,
		entityName: entityName,
	}
}

func (s *DirectoryService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *DirectoryService[T]) normalizeGetErr(err error, idOrName any) error {
	if err == nil {
		return nil
	}
	// Preserve existing AppError, but map not-found to the concrete entity name.
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrName)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrName)
}

// checkNameUnique returns a Duplicate error when another entity in the same
// tenant already carries the name.
func (s *DirectoryService[T]) checkNameUnique(ctx context.Context, tenantID id.ID, name string, excludeID id.ID) error {
	existing, err := s.repo.FindByName(ctx, tenantID, name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("check name uniqueness: %w", err)
	}
	if existing.GetID() != excludeID {
		return apperror.NewDuplicate(s.entityName, "name", name)
	}
	return nil
}

// Create validates and persists a new entity.
func (s *DirectoryService[T]) Create(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.checkNameUnique(ctx, e.GetTenantID(), e.GetName(), e.GetID()); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
}

// GetByID retrieves an entity by ID within the tenant.
func (s *DirectoryService[T]) GetByID(ctx context.Context, tenantID, entityID id.ID) (T, error) {
	e, err := s.repo.GetByID(ctx, tenantID, entityID)
	if err != nil {
		return e, s.normalizeGetErr(err, entityID.String())
	}
	return e, nil
}

// List retrieves entities with filtering.
func (s *DirectoryService[T]) List(ctx context.Context, tenantID id.ID, filter ListFilter) (ListResult[T], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.OrderBy == "" {
		filter.OrderBy = DefaultListFilter().OrderBy
	}

	result, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return result, fmt.Errorf("list %s: %w", s.entityName, err)
	}
	return result, nil
}

// Update validates and persists changes to an existing entity.
func (s *DirectoryService[T]) Update(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.checkNameUnique(ctx, e.GetTenantID(), e.GetName(), e.GetID()); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, e); err != nil {
			return s.normalizeGetErr(err, e.GetID().String())
		}
		return nil
	})
}

// Delete removes an entity within the tenant.
func (s *DirectoryService[T]) Delete(ctx context.Context, tenantID, entityID id.ID) error {
	if err := s.repo.Delete(ctx, tenantID, entityID); err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}
	return nil
}

// Exists reports whether the entity exists within the tenant.
func (s *DirectoryService[T]) Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, tenantID, entityID)
}
