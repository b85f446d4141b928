package shared

import "github.com/shopspring/decimal"

// Tolerance is the largest difference treated as equal when comparing totals.
var Tolerance = decimal.New(1, -3)

// NearlyEqual reports whether a and b differ by no more than Tolerance.
func NearlyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Negligible reports whether v is within Tolerance of zero.
func Negligible(v decimal.Decimal) bool {
	return v.Abs().LessThanOrEqual(Tolerance)
}

// Round2 rounds to the two decimal places stored in the ledger.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
