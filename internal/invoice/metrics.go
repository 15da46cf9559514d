package invoice

import "github.com/shopspring/decimal"

// Metrics are the order level figures an invoice prints.
type Metrics struct {
	Products       []map[string]any
	ProductTotals  []decimal.Decimal
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Shipping       decimal.Decimal
	Discount       decimal.Decimal
	CouponDiscount decimal.Decimal
	Total          decimal.Decimal
}

// CalculateMetrics derives totals from a normalized order. Explicit
// figures on the order win; anything missing is computed or zero.
func CalculateMetrics(order map[string]any) Metrics {
	products := lineItems(order)

	totals := make([]decimal.Decimal, len(products))
	sum := decimal.Zero
	for i, item := range products {
		totals[i] = LineTotal(item)
		sum = sum.Add(totals[i])
	}

	subtotal := sum
	if explicit, ok := numberAt(order, "subtotal"); ok {
		subtotal = explicit
	}

	m := Metrics{
		Products:       products,
		ProductTotals:  totals,
		Subtotal:       subtotal,
		Tax:            numberOrZero(order, "tax"),
		Shipping:       numberOrZero(order, "shippingCost"),
		Discount:       numberOrZero(order, "discount"),
		CouponDiscount: numberOrZero(order, "couponApplied", "discountAmount"),
	}

	if explicit, ok := numberAt(order, "totalAmount"); ok {
		m.Total = explicit
	} else {
		m.Total = m.Subtotal.
			Sub(m.Discount).
			Sub(m.CouponDiscount).
			Add(m.Shipping).
			Add(m.Tax)
	}
	return m
}

// LineTotal is the explicit totalPrice when finite, else price * quantity.
func LineTotal(item map[string]any) decimal.Decimal {
	if explicit, ok := numberAt(item, "totalPrice"); ok {
		return explicit
	}
	return numberOrZero(item, "price").Mul(numberOrZero(item, "quantity"))
}

// lineItems keeps positions stable: entries that are not objects become empty items.
func lineItems(order map[string]any) []map[string]any {
	raw, ok := order["products"].([]any)
	if !ok {
		return []map[string]any{}
	}
	items := make([]map[string]any, len(raw))
	for i, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			item = map[string]any{}
		}
		items[i] = item
	}
	return items
}

func numberAt(doc map[string]any, path ...string) (decimal.Decimal, bool) {
	n, ok := asNumber(Field(doc, path...))
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(n), true
}

func numberOrZero(doc map[string]any, path ...string) decimal.Decimal {
	n, _ := numberAt(doc, path...)
	return n
}
