package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPaid reads how much of total is settled. Paid and refunded orders
// count as fully settled; otherwise an explicit partial payment is clamped
// to [0, total].
func AmountPaid(order map[string]any, total decimal.Decimal) decimal.Decimal {
	switch strings.ToUpper(PickText(order["paymentStatus"])) {
	case "PAID", "REFUNDED":
		return total
	}
	partial, ok := PickNumber(Candidates(order, PartialPaymentRules)...)
	if !ok {
		return decimal.Zero
	}
	return decimal.Min(decimal.Max(decimal.NewFromFloat(partial), decimal.Zero), total)
}

// BalanceDue is total minus paid, never negative.
func BalanceDue(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(total.Sub(paid), decimal.Zero)
}
