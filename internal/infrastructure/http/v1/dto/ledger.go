package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/domain/ledger"
)

// RecordPurchaseRequest appends a purchase lot to the ledger.
type RecordPurchaseRequest struct {
	IngredientID   id.ID           `json:"ingredientId" binding:"required"`
	LocationID     id.ID           `json:"locationId" binding:"required"`
	SupplierID     id.ID           `json:"supplierId" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	PurchaseDate   time.Time       `json:"purchaseDate" binding:"required"`
	BatchNumber    *string         `json:"batchNumber"`
	ExpirationDate *time.Time      `json:"expirationDate"`
}

// ToEntity maps the request to a new PurchaseLot.
func (r RecordPurchaseRequest) ToEntity(tenantID id.ID) *ledger.PurchaseLot {
	lot := ledger.NewPurchaseLot(tenantID, r.IngredientID, r.LocationID, r.SupplierID,
		r.Quantity, r.PurchasePrice, r.PurchaseDate)
	lot.BatchNumber = r.BatchNumber
	lot.ExpirationDate = r.ExpirationDate
	return lot
}

// RecordUsageRequest appends a usage event against a lot.
type RecordUsageRequest struct {
	LotID    id.ID           `json:"lotId" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	UsedAt   time.Time       `json:"usedAt" binding:"required"`
	Reason   string          `json:"reason"`
	Notes    *string         `json:"notes"`
}

// ToEntity maps the request to a new UsageEvent.
func (r RecordUsageRequest) ToEntity(tenantID id.ID) *ledger.UsageEvent {
	ev := ledger.NewUsageEvent(tenantID, r.LotID, r.Quantity, r.UsedAt, r.Reason)
	ev.Notes = r.Notes
	return ev
}

// RecordSpoilageRequest appends a spoilage event against a lot.
type RecordSpoilageRequest struct {
	LotID     id.ID           `json:"lotId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	SpoiledAt time.Time       `json:"spoiledAt" binding:"required"`
	Reason    string          `json:"reason" binding:"required"`
	Notes     *string         `json:"notes"`
}

// ToEntity maps the request to a new SpoilageEvent.
func (r RecordSpoilageRequest) ToEntity(tenantID id.ID) *ledger.SpoilageEvent {
	ev := ledger.NewSpoilageEvent(tenantID, r.LotID, r.Quantity, r.SpoiledAt, r.Reason)
	ev.Notes = r.Notes
	return ev
}

// LotWithRemaining pairs a lot with its derived remaining quantity.
type LotWithRemaining struct {
	Lot       ledger.PurchaseLot `json:"lot"`
	Remaining decimal.Decimal    `json:"remaining"`
}

// AuditEntryResponse is one row of an entity's audit history.
type AuditEntryResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	UserID     string    `json:"userId,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
