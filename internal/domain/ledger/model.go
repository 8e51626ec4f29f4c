// Package ledger provides the append-only inventory ledger: purchase lots
// and the usage/spoilage events recorded against them.
//
// Lots are immutable once created. Depletion is represented by separate
// usage and spoilage events, never by decrementing the lot row; remaining
// quantity is always derived.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/apperror"
	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
	"github.com/ItsEgzix/Tasto-backend/internal/core/types"
)

// PurchaseLot represents one purchase event of an ingredient.
type PurchaseLot struct {
	ID       id.ID `db:"id" json:"id"`
	TenantID id.ID `db:"tenant_id" json:"-"`

	IngredientID id.ID `db:"ingredient_id" json:"ingredientId"`
	LocationID   id.ID `db:"location_id" json:"locationId"`
	SupplierID   id.ID `db:"supplier_id" json:"supplierId"`

	// Quantity purchased, in the ingredient's purchase-unit scale
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`

	// PurchasePrice is the total cost of the lot, not a per-unit price
	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchasePrice"`

	PurchaseDate   time.Time  `db:"purchase_date" json:"purchaseDate"`
	BatchNumber    *string    `db:"batch_number" json:"batchNumber,omitempty"`
	ExpirationDate *time.Time `db:"expiration_date" json:"expirationDate,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewPurchaseLot creates a lot with generated ID and creation timestamp.
func NewPurchaseLot(tenantID, ingredientID, locationID, supplierID id.ID, quantity, price decimal.Decimal, purchaseDate time.Time) *PurchaseLot {
	return &PurchaseLot{
		ID:            id.New(),
		TenantID:      tenantID,
		IngredientID:  ingredientID,
		LocationID:    locationID,
		SupplierID:    supplierID,
		Quantity:      quantity,
		PurchasePrice: price,
		PurchaseDate:  purchaseDate,
		CreatedAt:     time.Now().UTC(),
	}
}

// UnitPrice derives the per-unit price of the lot.
// A lot with zero quantity has no price data and yields zero.
func (l *PurchaseLot) UnitPrice() decimal.Decimal {
	return types.SafeDiv(l.PurchasePrice, l.Quantity)
}

// HasPriceData reports whether a unit price can be derived from the lot.
func (l *PurchaseLot) HasPriceData() bool {
	return l.Quantity.IsPositive()
}

// Validate implements entity.Validatable.
func (l *PurchaseLot) Validate(ctx context.Context) error {
	if id.IsNil(l.TenantID) {
		return apperror.NewValidation("tenant id is required").WithDetail("field", "tenantId")
	}
	if id.IsNil(l.IngredientID) {
		return apperror.NewValidation("ingredient is required").WithDetail("field", "ingredientId")
	}
	if id.IsNil(l.LocationID) {
		return apperror.NewValidation("storage location is required").WithDetail("field", "locationId")
	}
	if id.IsNil(l.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	if !l.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if l.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").WithDetail("field", "purchasePrice")
	}
	if l.PurchaseDate.IsZero() {
		return apperror.NewValidation("purchase date is required").WithDetail("field", "purchaseDate")
	}
	return nil
}

// UsageEvent records consumption against a purchase lot. Append-only;
// corrections are modeled as new events, never updates.
type UsageEvent struct {
	ID       id.ID `db:"id" json:"id"`
	TenantID id.ID `db:"tenant_id" json:"-"`

	LotID    id.ID           `db:"lot_id" json:"lotId"`
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`
	UsedAt   time.Time       `db:"used_at" json:"usedAt"`
	Reason   string          `db:"reason" json:"reason"`
	Notes    *string         `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewUsageEvent creates a usage event with generated ID.
func NewUsageEvent(tenantID, lotID id.ID, quantity decimal.Decimal, usedAt time.Time, reason string) *UsageEvent {
	return &UsageEvent{
		ID:        id.New(),
		TenantID:  tenantID,
		LotID:     lotID,
		Quantity:  quantity,
		UsedAt:    usedAt,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (e *UsageEvent) Validate(ctx context.Context) error {
	if id.IsNil(e.TenantID) {
		return apperror.NewValidation("tenant id is required").WithDetail("field", "tenantId")
	}
	if id.IsNil(e.LotID) {
		return apperror.NewValidation("lot is required").WithDetail("field", "lotId")
	}
	if !e.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if e.UsedAt.IsZero() {
		return apperror.NewValidation("usage date is required").WithDetail("field", "usedAt")
	}
	return nil
}

// SpoilageEvent records waste against a purchase lot. Same shape as a
// usage event, but the reason is mandatory.
type SpoilageEvent struct {
	ID       id.ID `db:"id" json:"id"`
	TenantID id.ID `db:"tenant_id" json:"-"`

	LotID     id.ID           `db:"lot_id" json:"lotId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	SpoiledAt time.Time       `db:"spoiled_at" json:"spoiledAt"`
	Reason    string          `db:"reason" json:"reason"`
	Notes     *string         `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewSpoilageEvent creates a spoilage event with generated ID.
func NewSpoilageEvent(tenantID, lotID id.ID, quantity decimal.Decimal, spoiledAt time.Time, reason string) *SpoilageEvent {
	return &SpoilageEvent{
		ID:        id.New(),
		TenantID:  tenantID,
		LotID:     lotID,
		Quantity:  quantity,
		SpoiledAt: spoiledAt,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (e *SpoilageEvent) Validate(ctx context.Context) error {
	if id.IsNil(e.TenantID) {
		return apperror.NewValidation("tenant id is required").WithDetail("field", "tenantId")
	}
	if id.IsNil(e.LotID) {
		return apperror.NewValidation("lot is required").WithDetail("field", "lotId")
	}
	if !e.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if e.Reason == "" {
		return apperror.NewValidation("spoilage reason is required").WithDetail("field", "reason")
	}
	if e.SpoiledAt.IsZero() {
		return apperror.NewValidation("spoilage date is required").WithDetail("field", "spoiledAt")
	}
	return nil
}

// LotConsumption holds grouped usage and spoilage sums for a lot.
type LotConsumption struct {
	Used    decimal.Decimal
	Spoiled decimal.Decimal
}

// Total returns combined consumption.
func (c LotConsumption) Total() decimal.Decimal {
	return c.Used.Add(c.Spoiled)
}

// Remaining computes the lot's remaining quantity given its consumption,
// floored at zero.
func (l *PurchaseLot) Remaining(c LotConsumption) decimal.Decimal {
	return types.FloorZero(l.Quantity.Sub(c.Total()))
}
