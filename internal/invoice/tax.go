package invoice

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// TaxAllocation is one line's share of the order tax. Rate is a percentage
// of the line total and nil when the line total is not positive.
type TaxAllocation struct {
	Amount decimal.Decimal  `json:"amount"`
	Rate   *decimal.Decimal `json:"rate"`
}

// AllocateTax spreads totalTax across lines in proportion to their totals.
// Each share is rounded to two decimals and the last line absorbs the
// rounding remainder. For a totalTax with more than two decimals that
// remainder can go negative.
func AllocateTax(productTotals []decimal.Decimal, subtotal, totalTax decimal.Decimal) []TaxAllocation {
	out := make([]TaxAllocation, len(productTotals))
	if len(productTotals) == 0 {
		return out
	}
	if !totalTax.IsPositive() || !subtotal.IsPositive() {
		for i := range out {
			out[i] = TaxAllocation{Amount: decimal.Zero}
		}
		return out
	}

	allocated := decimal.Zero
	last := len(productTotals) - 1
	for i, lineTotal := range productTotals[:last] {
		proportion := decimal.Zero
		if lineTotal.IsPositive() {
			proportion = lineTotal.Div(subtotal)
		}
		amount := totalTax.Mul(proportion).Round(2)
		allocated = allocated.Add(amount)
		out[i] = TaxAllocation{Amount: amount, Rate: rateOf(amount, lineTotal)}
	}

	remainder := totalTax.Sub(allocated).Round(2)
	out[last] = TaxAllocation{Amount: remainder, Rate: rateOf(remainder, productTotals[last])}
	return out
}

func rateOf(amount, lineTotal decimal.Decimal) *decimal.Decimal {
	if !lineTotal.IsPositive() {
		return nil
	}
	rate := amount.Div(lineTotal).Mul(hundred).Round(2)
	return &rate
}
