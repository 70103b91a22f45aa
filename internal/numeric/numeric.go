// Package numeric holds the rounding and validation rules shared by the
// indexation and payment code. All money math is exact decimal; rounding
// happens once, at the end, half-up with ties away from zero.
package numeric

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// RoundHalfUp rounds to a whole unit, ties away from zero (2.5 → 3, -2.5 → -3)
func RoundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// DivRoundHalfUp returns round-half-up(num / den) without an intermediate
// inexact quotient. den must be non-zero.
func DivRoundHalfUp(num, den decimal.Decimal) int64 {
	q, r := num.QuoRem(den, 0)
	if r.IsZero() {
		return q.IntPart()
	}
	// |r| / |den| >= 1/2 → move one unit away from zero
	if r.Abs().Mul(two).GreaterThanOrEqual(den.Abs()) {
		if num.Sign()*den.Sign() < 0 {
			q = q.Sub(one)
		} else {
			q = q.Add(one)
		}
	}
	return q.IntPart()
}

// RequirePositive fails with InvalidInputError unless d > 0
func RequirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return contracts.Invalid(field, "must be positive, got %s", d)
	}
	return nil
}

// RequireNonNegative fails with InvalidInputError when d < 0
func RequireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return contracts.Invalid(field, "must be >= 0, got %s", d)
	}
	return nil
}

// Parse reads a decimal string, mapping failures to InvalidInputError
func Parse(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, contracts.Invalid(field, "not a decimal: %q", s)
	}
	return d, nil
}

// Display formats a ratio for humans (6dp); never feed it back into math
func Display(d decimal.Decimal) string {
	return d.StringFixed(6)
}
