// Package format renders money and dates the way the shop's staff read them
// (es-MX conventions).
package format

import (
	"strings"
	"time"

	"github.com/go-playground/locales/es_MX"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var esMX = es_MX.New()

// Currency formats amount with two decimals and es-MX digit grouping. MXN
// renders with a bare "$"; other currencies are prefixed by their code.
// The locale's own FmtCurrency is not used: it neither groups digits nor
// places the symbol first.
func Currency(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "MXN"
	}
	rounded := amount.Round(2)
	digits := esMX.FmtNumber(rounded.Abs().InexactFloat64(), 2)

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	if currency == "MXN" {
		b.WriteByte('$')
	} else {
		b.WriteString(currency)
		b.WriteByte(' ')
	}
	b.WriteString(digits)
	return b.String()
}

// Date renders "2026-10-16" as "16 oct 2026". Unparseable input is returned as is.
func Date(s string) string {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return s
	}
	return strings.Replace(esMX.FmtDateMedium(t), ".", "", 1)
}

// ShortDate renders "2026-10-16" as "16 oct".
func ShortDate(s string) string {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("2") + " " + strings.TrimSuffix(esMX.MonthAbbreviated(t.Month()), ".")
}

// Today returns the calendar day of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(dateLayout)
}

// DaysAgo returns the calendar day n days before now in loc.
func DaysAgo(now time.Time, loc *time.Location, n int) string {
	return now.In(loc).AddDate(0, 0, -n).Format(dateLayout)
}
