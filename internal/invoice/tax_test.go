package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimals(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestAllocateTaxUnevenSplit(t *testing.T) {
	got := AllocateTax(decimals(300, 700), decimal.NewFromInt(1000), decimal.NewFromInt(18))

	require.Len(t, got, 2)
	assert.Equal(t, "5.40", got[0].Amount.StringFixed(2))
	require.NotNil(t, got[0].Rate)
	assert.Equal(t, "1.80", got[0].Rate.StringFixed(2))
	assert.Equal(t, "12.60", got[1].Amount.StringFixed(2))
	require.NotNil(t, got[1].Rate)
	assert.Equal(t, "1.80", got[1].Rate.StringFixed(2))
	assert.Equal(t, "18.00", got[0].Amount.Add(got[1].Amount).StringFixed(2))
}

func TestAllocateTaxLastLineAbsorbsRemainder(t *testing.T) {
	got := AllocateTax(decimals(100, 100, 100), decimal.NewFromInt(300), decimal.NewFromInt(10))

	require.Len(t, got, 3)
	assert.Equal(t, "3.33", got[0].Amount.StringFixed(2))
	assert.Equal(t, "3.33", got[1].Amount.StringFixed(2))
	assert.Equal(t, "3.34", got[2].Amount.StringFixed(2))
}

func TestAllocateTaxZeroTax(t *testing.T) {
	got := AllocateTax(decimals(300, 700), decimal.NewFromInt(1000), decimal.Zero)

	require.Len(t, got, 2)
	for _, entry := range got {
		assert.True(t, entry.Amount.IsZero())
		assert.Nil(t, entry.Rate)
	}
}

func TestAllocateTaxNonPositiveSubtotal(t *testing.T) {
	got := AllocateTax(decimals(0, 0), decimal.Zero, decimal.NewFromInt(18))

	require.Len(t, got, 2)
	for _, entry := range got {
		assert.True(t, entry.Amount.IsZero())
		assert.Nil(t, entry.Rate)
	}
}

func TestAllocateTaxZeroLinesWithPositiveSubtotal(t *testing.T) {
	got := AllocateTax(decimals(0, 0), decimal.NewFromInt(100), decimal.NewFromInt(18))

	require.Len(t, got, 2)
	assert.True(t, got[0].Amount.IsZero())
	assert.Nil(t, got[0].Rate)
	assert.Equal(t, "18.00", got[1].Amount.StringFixed(2))
	assert.Nil(t, got[1].Rate)
}

func TestAllocateTaxNoLines(t *testing.T) {
	assert.Empty(t, AllocateTax(nil, decimal.NewFromInt(100), decimal.NewFromInt(18)))
}

// A sub-cent tax can round the early shares up past the total. The last line
// then carries a negative remainder and the shares sum to less than the
// rounded tax.
func TestAllocateTaxSubCentOverAllocation(t *testing.T) {
	got := AllocateTax(decimals(100, 100, 100, 100), decimal.NewFromInt(400), decimal.RequireFromString("0.025"))
	require.Len(t, got, 4)

	for _, share := range got[:3] {
		assert.Equal(t, "0.01", share.Amount.String())
	}
	assert.Equal(t, "-0.01", got[3].Amount.String())
	require.NotNil(t, got[3].Rate)
	assert.Equal(t, "-0.01", got[3].Rate.String())

	sum := decimal.Zero
	for _, share := range got {
		sum = sum.Add(share.Amount)
	}
	assert.Equal(t, "0.02", sum.String())
}

// With equal thirds the early shares round down instead, and the remainder
// lands on the last line.
func TestAllocateTaxSubCentThirds(t *testing.T) {
	got := AllocateTax(decimals(100, 100, 100), decimal.NewFromInt(300), decimal.RequireFromString("0.015"))
	require.Len(t, got, 3)

	assert.True(t, got[0].Amount.IsZero())
	assert.True(t, got[1].Amount.IsZero())
	assert.Equal(t, "0.02", got[2].Amount.String())
}
