// Package money holds the decimal arithmetic used by settlements and leave encashment.
// Values keep full precision; rounding happens only when formatting for display.
package money

import (
	"github.com/shopspring/decimal"
)

// Sum adds all amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// IsNegative reports whether any of the given amounts is below zero.
func IsNegative(amounts ...decimal.Decimal) bool {
	for _, a := range amounts {
		if a.IsNegative() {
			return true
		}
	}
	return false
}

// Prorate returns amount * part / whole. A non-positive whole yields zero.
func Prorate(amount, part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(part).Div(whole)
}

// Display formats an amount with two decimals for presentation.
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
