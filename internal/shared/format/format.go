// Package format renders market numbers for human display.
package format

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
	thousand = decimal.New(1, 3)
)

// Currency renders a USD amount with two decimal places. A nil amount (the
// provider had no value) renders as a dash rather than a fake zero.
func Currency(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return "$" + d.StringFixed(2)
}

// Compact renders a large quantity with a K/M/B/T suffix, two decimal places.
func Compact(d decimal.Decimal) string {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(trillion):
		return d.Div(trillion).StringFixed(2) + "T"
	case abs.GreaterThanOrEqual(billion):
		return d.Div(billion).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(2) + "K"
	}
	return d.String()
}

// Percentage renders a signed 24h change, always carrying the sign.
func Percentage(d decimal.Decimal) string {
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// Rank renders a market cap rank; 0 means the provider had none.
func Rank(rank int) string {
	if rank <= 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", rank)
}
