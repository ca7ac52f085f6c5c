package handler

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

// Formatter renders amounts, counts and times for display in the hotel's
// locale and timezone.  JSON responses carry these next to the raw values.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	loc     *time.Location
}

// NewFormatter falls back to English, EUR and UTC on unparseable input.
func NewFormatter(locale, currencyCode string, loc *time.Location) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.EUR
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit, loc: loc}
}

// Money formats d with the currency symbol and locale separators.
func (f *Formatter) Money(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}

func (f *Formatter) Count(n int) string { return f.printer.Sprintf("%d", n) }

// Time renders t as hotel wall-clock time.
func (f *Formatter) Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc).Format("2006-01-02 15:04")
}

func (f *Formatter) Location() *time.Location { return f.loc }

var statusLabels = map[model.OrderStatus]string{
	model.StatusPending:   "Pending",
	model.StatusConfirmed: "Confirmed",
	model.StatusPreparing: "Preparing",
	model.StatusDelivered: "Delivered",
	model.StatusCancelled: "Cancelled",
}

func statusLabel(s model.OrderStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
