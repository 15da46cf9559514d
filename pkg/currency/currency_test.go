package currency

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatIndianGrouping(t *testing.T) {
	f := New("en-IN", "₹", "")

	got := f.Format(decimal.RequireFromString("1234567.5"))
	assert.True(t, strings.HasPrefix(got, "₹"), got)
	assert.Contains(t, got, "12,34,567")
	assert.True(t, strings.HasSuffix(got, ".50"), got)

	assert.Equal(t, "₹500.00", f.Format(decimal.NewFromInt(500)))
	assert.Equal(t, "₹0.00", f.Format(decimal.Zero))
}

func TestFormatRoundsAndSigns(t *testing.T) {
	f := New("en-US", "$", "")

	assert.Equal(t, "$1,234.57", f.Format(decimal.RequireFromString("1234.567")))
	assert.Equal(t, "-$50.00", f.Format(decimal.NewFromInt(-50)))
}

func TestNewFallsBackToDefaultLocale(t *testing.T) {
	f := New("not a locale!!", DefaultSymbol, "Nowhere/Invalid")
	assert.Equal(t, "₹500.00", f.Format(decimal.NewFromInt(500)))
	assert.Equal(t, "30 May 2024", f.FormatDate("2024-05-30T23:15:00Z"))
}

func TestFormatDate(t *testing.T) {
	f := New(DefaultLocale, DefaultSymbol, "")

	assert.Equal(t, "30 May 2024", f.FormatDate("2024-05-30T08:15:00.000Z"))
	assert.Equal(t, "30 May 2024", f.FormatDate("2024-05-30"))
	assert.Equal(t, "01 Jun 2024", f.FormatDate(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, Placeholder, f.FormatDate("soon"))
	assert.Equal(t, Placeholder, f.FormatDate(nil))
	assert.Equal(t, Placeholder, f.FormatDate(42))
	assert.Equal(t, Placeholder, f.FormatDate(time.Time{}))
}
