package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/safetyshop-backend/internal/invoice"
	"github.com/angelmondragon/safetyshop-backend/pkg/currency"
)

// Renderer lays invoice documents out as A4 PDFs.
type Renderer struct {
	money      *currency.Formatter
	footerNote string
}

func NewRenderer(money *currency.Formatter, footerNote string) *Renderer {
	return &Renderer{money: money, footerNote: footerNote}
}

// Render implements invoice.Renderer.
func (r *Renderer) Render(ctx context.Context, doc *invoice.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil invoice document")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)
	r.addHeader(m, doc)
	r.addMeta(m, doc)
	r.addParties(m, doc)
	r.addLines(m, doc)
	r.addTotals(m, doc)
	r.addFooter(m, doc)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdfDoc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return pdfDoc.GetBytes(), nil
}

func (r *Renderer) addHeader(m core.Maroto, doc *invoice.Document) {
	company := doc.Company
	left := col.New(7).Add(
		text.New(company.Name, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
	)
	top := 8.0
	if company.Tagline != "" {
		left.Add(text.New(company.Tagline, props.Text{Size: 9, Style: fontstyle.Italic, Align: align.Left, Top: top}))
		top += 5
	}
	for _, addr := range company.Address {
		left.Add(text.New(addr, props.Text{Size: 8, Align: align.Left, Top: top}))
		top += 4
	}
	if contact := joinNonEmpty(" | ", company.Phone, company.Email, company.Website); contact != "" {
		left.Add(text.New(contact, props.Text{Size: 8, Align: align.Left, Top: top}))
		top += 4
	}
	if company.TaxID != "" {
		left.Add(text.New("GSTIN: "+company.TaxID, props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Top: top}))
		top += 4
	}

	right := col.New(5).Add(
		text.New("TAX INVOICE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
		text.New("# "+doc.InvoiceNumber, props.Text{Size: 10, Align: align.Right, Top: 8}),
	)

	m.AddRow(top+4, left, right)
	m.AddRow(5, line.NewCol(12))
}

func (r *Renderer) addMeta(m core.Maroto, doc *invoice.Document) {
	m.AddRow(16,
		col.New(6).Add(
			text.New("Order ID: "+doc.OrderID, props.Text{Size: 9, Align: align.Left}),
			text.New("Order Date: "+r.money.FormatDate(doc.OrderDate), props.Text{Size: 9, Align: align.Left, Top: 5}),
			text.New("Invoice Date: "+r.money.FormatDate(doc.IssuedAt), props.Text{Size: 9, Align: align.Left, Top: 10}),
		),
		col.New(6).Add(
			text.New("Payment Status: "+strings.ToUpper(doc.PaymentStatus), props.Text{Size: 9, Align: align.Right}),
			text.New("Payment Method: "+orPlaceholder(doc.PaymentMethod), props.Text{Size: 9, Align: align.Right, Top: 5}),
			text.New("Est. Delivery: "+r.money.FormatDate(doc.EstimatedDelivery), props.Text{Size: 9, Align: align.Right, Top: 10}),
		),
	)
	m.AddRow(3, line.NewCol(12))
}

func (r *Renderer) addParties(m core.Maroto, doc *invoice.Document) {
	m.AddRow(28,
		col.New(6).Add(
			text.New("BILL TO:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
			text.New(doc.Customer.Name, props.Text{Size: 9, Align: align.Left, Top: 5}),
			text.New(doc.Customer.Email, props.Text{Size: 9, Align: align.Left, Top: 10}),
			text.New(doc.Customer.Mobile, props.Text{Size: 9, Align: align.Left, Top: 15}),
			text.New(doc.BillingAddress, props.Text{Size: 8, Align: align.Left, Top: 20}),
		),
		col.New(6).Add(
			text.New("SHIP TO:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
			text.New(doc.ShippingAddress, props.Text{Size: 8, Align: align.Left, Top: 5}),
		),
	)
	m.AddRow(3, line.NewCol(12))
}

func (r *Renderer) addLines(m core.Maroto, doc *invoice.Document) {
	header := props.Text{Size: 9, Style: fontstyle.Bold}
	m.AddRow(8,
		col.New(4).Add(text.New("Item", withAlign(header, align.Left))),
		col.New(2).Add(text.New("Unit Price", withAlign(header, align.Right))),
		col.New(1).Add(text.New("Qty", withAlign(header, align.Center))),
		col.New(2).Add(text.New("Subtotal", withAlign(header, align.Right))),
		col.New(1).Add(text.New("Tax", withAlign(header, align.Right))),
		col.New(2).Add(text.New("Total", withAlign(header, align.Right))),
	)
	m.AddRow(2, line.NewCol(12))

	body := props.Text{Size: 8}
	small := props.Text{Size: 7, Top: 4}
	for _, item := range doc.Lines {
		name := col.New(4).Add(text.New(item.Name, withAlign(body, align.Left)))
		detail := joinNonEmpty(" | ", item.Identifier, item.Variant)
		name.Add(text.New(detail, withAlign(small, align.Left)))

		price := col.New(2).Add(text.New(r.money.Format(item.UnitPrice), withAlign(body, align.Right)))
		if item.MRP != nil && item.MRP.GreaterThan(item.UnitPrice) {
			price.Add(text.New("MRP "+r.money.Format(*item.MRP), withAlign(small, align.Right)))
		}

		tax := col.New(1).Add(text.New(r.money.Format(item.TaxAmount), withAlign(body, align.Right)))
		if item.TaxRate != nil {
			tax.Add(text.New("@"+item.TaxRate.StringFixed(2)+"%", withAlign(small, align.Right)))
		}

		m.AddRow(11,
			name,
			price,
			col.New(1).Add(text.New(formatQuantity(item.Quantity), withAlign(body, align.Center))),
			col.New(2).Add(text.New(r.money.Format(item.Subtotal), withAlign(body, align.Right))),
			tax,
			col.New(2).Add(text.New(r.money.Format(item.LineTotal), withAlign(body, align.Right))),
		)
	}
	m.AddRow(3, line.NewCol(12))
}

func (r *Renderer) addTotals(m core.Maroto, doc *invoice.Document) {
	totals := doc.Totals
	r.addTotalRow(m, "Subtotal:", r.money.Format(totals.Subtotal), false)
	if totals.Discount.IsPositive() {
		r.addTotalRow(m, "Discount:", "-"+r.money.Format(totals.Discount), false)
	}
	if totals.CouponDiscount.IsPositive() {
		label := "Coupon:"
		if totals.CouponCode != "" {
			label = fmt.Sprintf("Coupon (%s):", totals.CouponCode)
		}
		r.addTotalRow(m, label, "-"+r.money.Format(totals.CouponDiscount), false)
	}
	r.addTotalRow(m, "Shipping:", r.money.Format(totals.Shipping), false)
	r.addTotalRow(m, "Tax:", r.money.Format(totals.Tax), false)
	m.AddRow(2, col.New(7), line.NewCol(5))
	r.addTotalRow(m, "Total:", r.money.Format(totals.Total), true)
	r.addTotalRow(m, "Amount Paid:", r.money.Format(totals.AmountPaid), false)
	r.addTotalRow(m, "Balance Due:", r.money.Format(totals.BalanceDue), true)
}

func (r *Renderer) addTotalRow(m core.Maroto, label, value string, bold bool) {
	style := props.Text{Size: 9, Align: align.Right}
	if bold {
		style.Style = fontstyle.Bold
		style.Size = 10
	}
	m.AddRow(6,
		col.New(7),
		col.New(3).Add(text.New(label, style)),
		col.New(2).Add(text.New(value, style)),
	)
}

func (r *Renderer) addFooter(m core.Maroto, doc *invoice.Document) {
	if doc.Notes != "" {
		m.AddRow(4)
		m.AddRow(12,
			col.New(12).Add(
				text.New("Notes:", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}),
				text.New(doc.Notes, props.Text{Size: 8, Align: align.Left, Top: 5}),
			),
		)
	}
	if r.footerNote != "" {
		m.AddRow(5, line.NewCol(12))
		m.AddRow(8,
			col.New(12).Add(
				text.New(r.footerNote, props.Text{Size: 8, Style: fontstyle.Italic, Align: align.Center}),
			),
		)
	}
}

func withAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	return p
}

func formatQuantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != invoice.Placeholder {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}

func orPlaceholder(value string) string {
	if value == "" {
		return invoice.Placeholder
	}
	return value
}
