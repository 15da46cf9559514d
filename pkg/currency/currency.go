package currency

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale = "en-IN"
	DefaultSymbol = "₹"

	// DateLayout is the printed day month year form.
	DateLayout = "02 Jan 2006"
	// Placeholder is printed for values that cannot be formatted.
	Placeholder = "--"
)

var dateInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Formatter prints money and dates for one locale.
type Formatter struct {
	printer  *message.Printer
	symbol   string
	location *time.Location
}

// New builds a formatter. Unknown locales fall back to en-IN; an empty
// timezone or one that cannot be loaded prints dates in UTC.
func New(locale, symbol, timezone string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || locale == "" {
		tag = language.MustParse(DefaultLocale)
	}
	loc := time.UTC
	if timezone != "" {
		if loaded, err := time.LoadLocation(timezone); err == nil {
			loc = loaded
		}
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		symbol:   symbol,
		location: loc,
	}
}

// Format renders amount with two fraction digits and locale grouping,
// for example ₹12,34,567.50 for en-IN.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	digits := f.printer.Sprint(number.Decimal(
		rounded.InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	return sign + f.symbol + digits
}

// FormatDate renders a time.Time or a date string as DateLayout, or
// Placeholder when value is not a recognizable date.
func (f *Formatter) FormatDate(value any) string {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return Placeholder
		}
		t = *v
	case string:
		parsed, ok := parseDate(strings.TrimSpace(v))
		if !ok {
			return Placeholder
		}
		t = parsed
	default:
		return Placeholder
	}
	if t.IsZero() {
		return Placeholder
	}
	return t.In(f.location).Format(DateLayout)
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
