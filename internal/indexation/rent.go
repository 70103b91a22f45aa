package indexation

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/numeric"
)

// ComputeAdjustedRent returns round-half-up(baseRent × ratio) in whole units.
// The product is exact; a ratio of exactly one returns the base rent as given.
// Base rents are whole currency units (no sub-unit currency); fractional
// amounts are rejected.
func ComputeAdjustedRent(baseRent decimal.Decimal, ratio Ratio) (int64, error) {
	if err := numeric.RequirePositive("base_rent", baseRent); err != nil {
		return 0, err
	}
	if !baseRent.Equal(baseRent.Truncate(0)) {
		return 0, contracts.Invalid("base_rent", "must be whole currency units, got %s", baseRent)
	}
	if ratio.Denominator.IsZero() {
		return 0, contracts.Invalid("ratio", "zero denominator")
	}
	if !ratio.IsPositive() {
		return 0, contracts.Invalid("ratio", "must be positive, got %s", ratio)
	}

	if ratio.IsOne() {
		return baseRent.IntPart(), nil
	}
	return numeric.DivRoundHalfUp(baseRent.Mul(ratio.Numerator), ratio.Denominator), nil
}
