package indexation

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/numeric"
)

// Ratio is an exact fraction current/base after chain normalisation.
// It is never collapsed to a rounded decimal before the rent is computed.
type Ratio struct {
	Numerator   decimal.Decimal `json:"numerator"`
	Denominator decimal.Decimal `json:"denominator"`
}

// One is the "no change" ratio
func One() Ratio {
	return Ratio{Numerator: decimal.NewFromInt(1), Denominator: decimal.NewFromInt(1)}
}

// NewRatio builds num/den; den must be non-zero
func NewRatio(num, den decimal.Decimal) Ratio {
	if den.IsNegative() {
		num, den = num.Neg(), den.Neg()
	}
	return Ratio{Numerator: num, Denominator: den}
}

// IsOne reports an exact 1.0 ratio
func (r Ratio) IsOne() bool {
	return r.Numerator.Equal(r.Denominator)
}

// IsPositive reports r > 0
func (r Ratio) IsPositive() bool {
	return r.Numerator.Sign()*r.Denominator.Sign() > 0
}

// Mul multiplies two ratios exactly
func (r Ratio) Mul(o Ratio) Ratio {
	return NewRatio(r.Numerator.Mul(o.Numerator), r.Denominator.Mul(o.Denominator))
}

// Cmp compares by cross-multiplication (denominators are kept positive)
func (r Ratio) Cmp(o Ratio) int {
	return r.Numerator.Mul(o.Denominator).Cmp(o.Numerator.Mul(r.Denominator))
}

// Equal reports exact equality of the represented values
func (r Ratio) Equal(o Ratio) bool {
	return r.Cmp(o) == 0
}

// Decimal approximates the ratio (16 significant decimals); display and logs only
func (r Ratio) Decimal() decimal.Decimal {
	return r.Numerator.Div(r.Denominator)
}

// String renders the ratio to 6 decimal places
func (r Ratio) String() string {
	return numeric.Display(r.Decimal())
}
