// Package types provides decimal helpers shared by the ledger and cost engine.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity represents a quantity in purchase-unit scale.
// Same decimal representation as Money; kept as a separate name for readability.
type Quantity = decimal.Decimal

// ReportScale is the number of decimal places used for external reporting.
const ReportScale = 2

// NewFromString parses a decimal from its string form.
// This is the preferred constructor for monetary values.
func NewFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimal parses a decimal string, panicking on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns the zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// Round2 rounds to 2 decimal places for external reporting.
// Internal arithmetic always runs at full precision; rounding happens once,
// at the reporting boundary.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(ReportScale)
}

// FloorZero clamps negative values to zero.
// The ledger never reports negative remaining quantity, even when historical
// usage plus spoilage exceed a lot's purchased quantity.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SafeDiv divides a by b, returning zero when b is zero.
// A lot with zero quantity has no derivable unit price.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
