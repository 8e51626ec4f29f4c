package stock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsEgzix/Tasto-backend/internal/core/id"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 0, 0, 0, 0, time.UTC)
}

func TestAllocate_OldestFirst(t *testing.T) {
	older := id.New()
	newer := id.New()
	lots := []LotStock{
		{LotID: newer, PurchaseDate: day(10), Remaining: d("5")},
		{LotID: older, PurchaseDate: day(1), Remaining: d("5")},
	}

	result := Allocate(d("7"), lots)

	require.True(t, result.Satisfied())
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, older, result.Allocations[0].LotID)
	assert.True(t, result.Allocations[0].Quantity.Equal(d("5")))
	assert.Equal(t, newer, result.Allocations[1].LotID)
	assert.True(t, result.Allocations[1].Quantity.Equal(d("2")))
	assert.True(t, result.Allocated().Equal(d("7")))
}

func TestAllocate_Shortage(t *testing.T) {
	lots := []LotStock{
		{LotID: id.New(), PurchaseDate: day(1), Remaining: d("3")},
		{LotID: id.New(), PurchaseDate: day(2), Remaining: d("4")},
	}

	result := Allocate(d("20"), lots)

	assert.False(t, result.Satisfied())
	assert.True(t, result.Shortage.Equal(d("13")), "shortage = %s", result.Shortage)
	assert.True(t, result.Allocated().Equal(d("7")))
	assert.Len(t, result.Allocations, 2)
}

func TestAllocate_NoLots(t *testing.T) {
	result := Allocate(d("10"), nil)

	assert.False(t, result.Satisfied())
	assert.True(t, result.Shortage.Equal(d("10")))
	assert.Empty(t, result.Allocations)
}

func TestAllocate_SkipsEmptyLots(t *testing.T) {
	empty := id.New()
	full := id.New()
	lots := []LotStock{
		{LotID: empty, PurchaseDate: day(1), Remaining: decimal.Zero},
		{LotID: full, PurchaseDate: day(2), Remaining: d("10")},
	}

	result := Allocate(d("4"), lots)

	require.True(t, result.Satisfied())
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, full, result.Allocations[0].LotID)
}

func TestAllocate_StopsWhenSatisfied(t *testing.T) {
	lots := []LotStock{
		{LotID: id.New(), PurchaseDate: day(1), Remaining: d("10")},
		{LotID: id.New(), PurchaseDate: day(2), Remaining: d("10")},
	}

	result := Allocate(d("10"), lots)

	require.True(t, result.Satisfied())
	assert.Len(t, result.Allocations, 1)
}

func TestAllocate_SameDayTieBreaksByLotID(t *testing.T) {
	a := id.New()
	b := id.New()
	first, second := a, b
	if b.String() < a.String() {
		first, second = b, a
	}
	lots := []LotStock{
		{LotID: second, PurchaseDate: day(5), Remaining: d("1")},
		{LotID: first, PurchaseDate: day(5), Remaining: d("1")},
	}

	result := Allocate(d("2"), lots)

	require.Len(t, result.Allocations, 2)
	assert.Equal(t, first, result.Allocations[0].LotID)
	assert.Equal(t, second, result.Allocations[1].LotID)
}

func TestAllocate_FractionalQuantities(t *testing.T) {
	lots := []LotStock{
		{LotID: id.New(), PurchaseDate: day(1), Remaining: d("0.3")},
		{LotID: id.New(), PurchaseDate: day(2), Remaining: d("0.3")},
	}

	result := Allocate(d("0.5"), lots)

	require.True(t, result.Satisfied())
	assert.True(t, result.Allocations[0].Quantity.Equal(d("0.3")))
	assert.True(t, result.Allocations[1].Quantity.Equal(d("0.2")))
}
