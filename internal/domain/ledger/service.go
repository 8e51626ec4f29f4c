package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/tx"
	"github.com/ItsEgzix/Tasto-backend/pkg/logger"
)

// RefChecker verifies a referenced directory entry exists within the tenant.
type RefChecker interface {
	Exists(ctx context.Context, tenantID, entityID id.ID) (bool, error)
}

// AuditTrail records accepted ledger writes. Implemented by the postgres
// audit service; recorded in the same transaction as the write.
type AuditTrail interface {
	Record(ctx context.Context, action, entityType string, entityID id.ID, payload any) error
}

// AnalyticsDispatcher triggers asynchronous analytics recomputation.
// Enqueue must never block or fail the calling write path.
type AnalyticsDispatcher interface {
	Enqueue(tenantID, ingredientID id.ID)
}

// Service provides the ledger write path: reference-integrity and
// stock-sufficiency checks run synchronously before any mutating write,
// and fail the whole operation atomically.
type Service struct {
	repo        Repository
	ingredients RefChecker
	locations   RefChecker
	suppliers   RefChecker
	txManager   tx.Manager
	audit       AuditTrail
	analytics   AnalyticsDispatcher
}

// NewService creates a new ledger service.
func NewService(
	repo Repository,
	ingredients, locations, suppliers RefChecker,
	txManager tx.Manager,
	audit AuditTrail,
	analytics AnalyticsDispatcher,
) *Service {
	return &Service{
		repo:        repo,
		ingredients: ingredients,
		locations:   locations,
		suppliers:   suppliers,
		txManager:   txManager,
		audit:       audit,
		analytics:   analytics,
	}
}

// RecordPurchase appends a purchase lot after validating its references.
func (s *Service) RecordPurchase(ctx context.Context, lot *PurchaseLot) error {
	if err := lot.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkRef(ctx, s.ingredients, "ingredient", lot.TenantID, lot.IngredientID); err != nil {
		return err
	}
	if err := s.checkRef(ctx, s.locations, "storage location", lot.TenantID, lot.LocationID); err != nil {
		return err
	}
	if err := s.checkRef(ctx, s.suppliers, "supplier", lot.TenantID, lot.SupplierID); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertLot(ctx, lot); err != nil {
			return fmt.Errorf("insert lot: %w", err)
		}
		return s.audit.Record(ctx, "purchase", "purchase_lot", lot.ID, lot)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase recorded",
		"lot_id", lot.ID,
		"ingredient_id", lot.IngredientID,
		"quantity", lot.Quantity,
	)

	s.analytics.Enqueue(lot.TenantID, lot.IngredientID)
	return nil
}

// RecordUsage appends a usage event. The lot row is locked while remaining
// quantity is recomputed, so two concurrent postings against the same lot
// cannot both pass the sufficiency check.
func (s *Service) RecordUsage(ctx context.Context, ev *UsageEvent) error {
	if err := ev.Validate(ctx); err != nil {
		return err
	}

	var ingredientID id.ID
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lot, err := s.checkSufficiency(ctx, ev.TenantID, ev.LotID, ev.Quantity)
		if err != nil {
			return err
		}
		ingredientID = lot.IngredientID

		if err := s.repo.InsertUsage(ctx, ev); err != nil {
			return fmt.Errorf("insert usage: %w", err)
		}
		return s.audit.Record(ctx, "usage", "usage_event", ev.ID, ev)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "usage recorded",
		"lot_id", ev.LotID,
		"quantity", ev.Quantity,
		"reason", ev.Reason,
	)

	s.analytics.Enqueue(ev.TenantID, ingredientID)
	return nil
}

// RecordSpoilage appends a spoilage event under the same sufficiency check
// as usage.
func (s *Service) RecordSpoilage(ctx context.Context, ev *SpoilageEvent) error {
	if err := ev.Validate(ctx); err != nil {
		return err
	}

	var ingredientID id.ID
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lot, err := s.checkSufficiency(ctx, ev.TenantID, ev.LotID, ev.Quantity)
		if err != nil {
			return err
		}
		ingredientID = lot.IngredientID

		if err := s.repo.InsertSpoilage(ctx, ev); err != nil {
			return fmt.Errorf("insert spoilage: %w", err)
		}
		return s.audit.Record(ctx, "spoilage", "spoilage_event", ev.ID, ev)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "spoilage recorded",
		"lot_id", ev.LotID,
		"quantity", ev.Quantity,
		"reason", ev.Reason,
	)

	s.analytics.Enqueue(ev.TenantID, ingredientID)
	return nil
}

// checkSufficiency locks the lot and verifies the requested quantity does
// not exceed remaining stock. Must run inside a transaction.
func (s *Service) checkSufficiency(ctx context.Context, tenantID, lotID id.ID, requested decimal.Decimal) (*PurchaseLot, error) {
	lot, err := s.repo.GetLotForUpdate(ctx, tenantID, lotID)
	if err != nil {
		return nil, err
	}

	consumption, err := s.repo.ConsumptionByLot(ctx, tenantID, []id.ID{lotID})
	if err != nil {
		return nil, fmt.Errorf("consumption sums: %w", err)
	}

	remaining := lot.Remaining(consumption[lotID])
	if requested.GreaterThan(remaining) {
		return nil, apperror.NewInsufficientStock(lot.IngredientID.String(), requested, remaining).
			WithDetail("lot_id", lotID.String())
	}
	return lot, nil
}

// checkRef verifies a directory reference belongs to the tenant.
func (s *Service) checkRef(ctx context.Context, checker RefChecker, entity string, tenantID, entityID id.ID) error {
	ok, err := checker.Exists(ctx, tenantID, entityID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !ok {
		return apperror.NewNotFound(entity, entityID.String())
	}
	return nil
}
