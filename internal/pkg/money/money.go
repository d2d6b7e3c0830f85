// Package money holds the decimal conventions shared by the ledger, catalog and reports.
package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits stored for every amount.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round normalizes an amount to Scale digits rounding half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// FromMinor converts provider minor units (satang, cents) to a major-unit amount.
func FromMinor(minor int64) decimal.Decimal {
	return Round(decimal.NewFromInt(minor).Div(hundred))
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}

// Effective returns discount when set, otherwise price.
func Effective(price decimal.Decimal, discount decimal.NullDecimal) decimal.Decimal {
	if discount.Valid {
		return discount.Decimal
	}
	return price
}

// Percent returns part/whole*100 rounded to Scale digits, or zero when whole is zero.
func Percent(part, whole int) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(whole)), Scale)
}
