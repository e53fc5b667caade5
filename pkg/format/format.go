// Package format renders prices and dates the way the storefront displays them.
package format

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencyPrefix = "Rs."

var printer = message.NewPrinter(language.English)

// Price formats an amount in rupees with no decimal places and thousands grouping,
// e.g. 1000 -> "Rs. 1,000". Fractions are rounded half away from zero.
func Price(amount float64) string {
	return printer.Sprintf("%s %d", currencyPrefix, int64(math.Round(amount)))
}

// DateOptions tweaks Date output.
type DateOptions struct {
	Short bool // abbreviated month name
}

// Date formats t as "January 15, 2024", or "Jan 15, 2024" with Short set.
func Date(t time.Time, opts DateOptions) string {
	if opts.Short {
		return t.Format("Jan 2, 2006")
	}
	return t.Format("January 2, 2006")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DateString parses a date or timestamp string and formats it with Date.
func DateString(s string, opts DateOptions) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t, opts), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}
