package render

import (
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every rendered amount.
const CurrencySymbol = "₱"

// FormatAmount renders v with exactly two decimals. The value is taken from
// the shortest decimal representation of the float, so 1500.005 stays
// 1500.005 instead of its binary approximation, and rounding is half away
// from zero.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// LineAmount renders price × quantity with the same rounding as FormatAmount.
func LineAmount(price float64, quantity int) string {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		StringFixed(2)
}
