package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/safetyshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/safetyshop-backend/pkg/errors"
	"github.com/angelmondragon/safetyshop-backend/pkg/logger"
)

// Placeholder is printed wherever a text field could not be resolved.
const Placeholder = "--"

const (
	variantWithQR    = "With QR"
	variantWithoutQR = "Without QR"
)

// Letterhead is the seller block printed at the top of every invoice.
type Letterhead struct {
	Name    string   `json:"name"`
	Tagline string   `json:"tagline,omitempty"`
	Address []string `json:"address,omitempty"`
	TaxID   string   `json:"tax_id,omitempty"`
	Email   string   `json:"email,omitempty"`
	Website string   `json:"website,omitempty"`
	Phone   string   `json:"phone,omitempty"`
}

// LetterheadFromConfig maps deployment branding onto a Letterhead.
func LetterheadFromConfig(cfg config.CompanyConfig) Letterhead {
	return Letterhead{
		Name:    cfg.Name,
		Tagline: cfg.Tagline,
		Address: append([]string(nil), cfg.Address...),
		TaxID:   cfg.TaxID,
		Email:   cfg.Email,
		Website: cfg.Website,
		Phone:   cfg.Phone,
	}
}

// Party identifies the buyer.
type Party struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// Line is one display-ready line item.
type Line struct {
	Name       string           `json:"name"`
	Identifier string           `json:"identifier"`
	Variant    string           `json:"variant,omitempty"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	Quantity   float64          `json:"quantity"`
	MRP        *decimal.Decimal `json:"mrp"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	TaxAmount  decimal.Decimal  `json:"tax_amount"`
	TaxRate    *decimal.Decimal `json:"tax_rate"`
	LineTotal  decimal.Decimal  `json:"line_total"`
}

// Totals are the order level money figures.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Shipping       decimal.Decimal `json:"shipping"`
	Discount       decimal.Decimal `json:"discount"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
}

// Document is the flat, sanitized invoice handed to renderers.
type Document struct {
	Company           Letterhead `json:"company"`
	InvoiceNumber     string     `json:"invoice_number"`
	OrderID           string     `json:"order_id"`
	IssuedAt          string     `json:"issued_at"`
	OrderDate         any        `json:"order_date"`
	EstimatedDelivery any        `json:"estimated_delivery"`
	Customer          Party      `json:"customer"`
	BillingAddress    string     `json:"billing_address"`
	ShippingAddress   string     `json:"shipping_address"`
	PaymentStatus     string     `json:"payment_status"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Lines             []Line     `json:"lines"`
	Totals            Totals     `json:"totals"`
}

// BuildOption supplies values the stored order may not carry.
type BuildOption func(*buildOptions)

type buildOptions struct {
	orderNumber string
	orderID     string
}

// WithOrderNumber is used when the order document has no number of its own.
func WithOrderNumber(number string) BuildOption {
	return func(o *buildOptions) { o.orderNumber = number }
}

// WithOrderID is used when the order document has no identifier of its own.
func WithOrderID(id string) BuildOption {
	return func(o *buildOptions) { o.orderID = id }
}

// Builder assembles invoice documents from raw order records.
type Builder struct {
	sanitizer    *Sanitizer
	letterhead   Letterhead
	numberPrefix string
	now          func() time.Time
}

func NewBuilder(logg *logger.Logger, letterhead Letterhead, numberPrefix string) *Builder {
	return &Builder{
		sanitizer:    NewSanitizer(logg),
		letterhead:   letterhead,
		numberPrefix: numberPrefix,
		now:          time.Now,
	}
}

// Build sanitizes order and derives every printed value. Malformed fields
// degrade to zero or Placeholder; only a non-object order is rejected.
func (b *Builder) Build(ctx context.Context, order any, opts ...BuildOption) (*Document, error) {
	options := buildOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	doc, ok := b.sanitizer.Normalize(ctx, order).(map[string]any)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must be a JSON object")
	}

	metrics := CalculateMetrics(doc)
	allocations := AllocateTax(metrics.ProductTotals, metrics.Subtotal, metrics.Tax)
	paid := AmountPaid(doc, metrics.Total)

	lines := make([]Line, len(metrics.Products))
	for i, item := range metrics.Products {
		lines[i] = buildLine(item, metrics.ProductTotals[i], allocations[i])
	}

	number := PickText(append(Candidates(doc, OrderNumberRules), options.orderNumber)...)

	return &Document{
		Company:           b.letterhead,
		InvoiceNumber:     orPlaceholder(b.invoiceNumber(number)),
		OrderID:           orPlaceholder(PickText(doc["_id"], doc["id"], options.orderID)),
		IssuedAt:          b.now().UTC().Format(isoLayout),
		OrderDate:         firstPresent(doc["orderDate"], doc["createdAt"]),
		EstimatedDelivery: doc["estimatedDelivery"],
		Customer: Party{
			Name:   orPlaceholder(PickText(Candidates(doc, CustomerNameRules)...)),
			Email:  orPlaceholder(PickText(Candidates(doc, CustomerEmailRules)...)),
			Mobile: orPlaceholder(PickText(Candidates(doc, CustomerMobileRules)...)),
		},
		BillingAddress:  orPlaceholder(firstAddress(doc, BillingAddressRules)),
		ShippingAddress: orPlaceholder(firstAddress(doc, ShippingAddressRules)),
		PaymentStatus:   orPlaceholder(PickText(doc["paymentStatus"])),
		PaymentMethod:   PickText(doc["paymentMethod"], Field(doc, "paymentDetails", "method")),
		Notes:           PickText(doc["notes"], doc["orderNotes"], doc["note"]),
		Lines:           lines,
		Totals: Totals{
			Subtotal:       metrics.Subtotal,
			Tax:            metrics.Tax,
			Shipping:       metrics.Shipping,
			Discount:       metrics.Discount,
			CouponDiscount: metrics.CouponDiscount,
			CouponCode:     PickText(Field(doc, "couponApplied", "couponCode")),
			Total:          metrics.Total,
			AmountPaid:     paid,
			BalanceDue:     BalanceDue(metrics.Total, paid),
		},
	}, nil
}

func (b *Builder) invoiceNumber(number string) string {
	if number == "" {
		return ""
	}
	return b.numberPrefix + number
}

func buildLine(item map[string]any, subtotal decimal.Decimal, tax TaxAllocation) Line {
	quantity, _ := PickNumber(item["quantity"])
	line := Line{
		Name:       orPlaceholder(ResolveProductName(item)),
		Identifier: orPlaceholder(ResolveProductIdentifier(item)),
		Variant:    variantLabel(item),
		UnitPrice:  numberOrZero(item, "price"),
		Quantity:   quantity,
		Subtotal:   subtotal,
		TaxAmount:  tax.Amount,
		TaxRate:    tax.Rate,
		LineTotal:  subtotal.Add(tax.Amount),
	}
	if mrp, ok := PickNumber(Candidates(item, MRPRules)...); ok && mrp > 0 {
		value := decimal.NewFromFloat(mrp)
		line.MRP = &value
	}
	return line
}

func variantLabel(item map[string]any) string {
	withQR, ok := PickBoolean(Candidates(item, QROptionRules)...)
	if !ok {
		return PickText(item["variantName"], item["variant"])
	}
	if withQR {
		return variantWithQR
	}
	return variantWithoutQR
}

func firstAddress(doc map[string]any, rules []Rule) string {
	for _, candidate := range Candidates(doc, rules) {
		if text := FormatAddress(candidate); text != "" {
			return text
		}
	}
	return ""
}

func firstPresent(values ...any) any {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}

func orPlaceholder(text string) string {
	if text == "" {
		return Placeholder
	}
	return text
}
