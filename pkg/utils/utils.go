package utils

import (
	"github.com/shopspring/decimal"
)

// CentTolerance is the largest difference accepted when two monetary totals
// are compared for equality.
var CentTolerance = decimal.New(1, -2)

// ToCurrency rounds a monetary value to 2 decimal places, half away from zero.
// Every value written to the ledger or to a duplicata passes through here.
func ToCurrency(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// WithinTolerance reports whether |a - b| <= tolerance
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
