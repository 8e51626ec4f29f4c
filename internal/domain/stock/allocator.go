// Package stock derives remaining quantities from the ledger and allocates
// consumption across purchase lots oldest-first.
package stock

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

// LotStock is a lot's identity plus its remaining quantity, the unit the
// allocator works in.
type LotStock struct {
	LotID        id.ID
	PurchaseDate time.Time
	Remaining    decimal.Decimal
}

// Allocation is a quantity taken from one lot.
type Allocation struct {
	LotID    id.ID           `json:"lotId"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AllocationResult is the outcome of a FIFO walk: the per-lot takes plus
// whatever portion of the requirement no lot could satisfy.
type AllocationResult struct {
	Allocations []Allocation    `json:"allocations"`
	Shortage    decimal.Decimal `json:"shortage"`
}

// Satisfied reports whether the full required quantity was allocated.
func (r AllocationResult) Satisfied() bool {
	return r.Shortage.IsZero()
}

// Allocated returns the total quantity taken across lots.
func (r AllocationResult) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(a.Quantity)
	}
	return total
}

// Allocate walks lots oldest-first, taking min(remaining, still needed)
// from each until the requirement is met or lots run out. Lots with zero
// remaining are skipped; an empty lot slice yields a 100% shortage, not an
// error. Same-day lots break ties by lot ID, which is time-ordered, so the
// walk is stable.
func Allocate(required decimal.Decimal, lots []LotStock) AllocationResult {
	sorted := make([]LotStock, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PurchaseDate.Equal(sorted[j].PurchaseDate) {
			return sorted[i].PurchaseDate.Before(sorted[j].PurchaseDate)
		}
		return sorted[i].LotID.String() < sorted[j].LotID.String()
	})

	result := AllocationResult{Shortage: decimal.Zero}
	needed := required

	for _, lot := range sorted {
		if !needed.IsPositive() {
			break
		}
		if !lot.Remaining.IsPositive() {
			continue
		}

		take := decimal.Min(lot.Remaining, needed)
		result.Allocations = append(result.Allocations, Allocation{
			LotID:    lot.LotID,
			Quantity: take,
		})
		needed = needed.Sub(take)
	}

	if needed.IsPositive() {
		result.Shortage = needed
	}
	return result
}
