package indexation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
	"github.com/wonny/rentix/backend/internal/numeric"
)

// Calculator produces explainable Calculation records for linked contracts
type Calculator struct {
	resolver   *Resolver
	policyHash string
	now        func() time.Time
}

// NewCalculator wraps a resolver; policyHash is stamped on every record
func NewCalculator(resolver *Resolver, policyHash string) *Calculator {
	return &Calculator{
		resolver:   resolver,
		policyHash: policyHash,
		now:        time.Now,
	}
}

// Calculate computes the rent owed for currentPeriod under spec.
// The result reproduces AdjustedRent from its own inputs (see Recompute).
func (c *Calculator) Calculate(ctx context.Context, spec contracts.LinkageSpec, currentPeriod contracts.Period) (*contracts.Calculation, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	res, err := c.resolver.Resolve(ctx, spec.Series, spec.BaseDate, currentPeriod)
	if err != nil {
		return nil, err
	}

	calc, err := BuildCalculation(res, spec.BaseRentAmount, spec.Terms)
	if err != nil {
		return nil, err
	}
	calc.PolicyHash = c.policyHash
	calc.CreatedAt = c.now().UTC()
	return calc, nil
}

// CalculateForDue picks the index month for a due date per spec.Mode, then calculates
func (c *Calculator) CalculateForDue(ctx context.Context, spec contracts.LinkageSpec, due time.Time) (*contracts.Calculation, error) {
	return c.Calculate(ctx, spec, IndexPeriodFor(spec.Mode, due))
}

// BuildCalculation applies terms to a resolution and rounds the rent
func BuildCalculation(res *Resolution, baseRent decimal.Decimal, terms contracts.LinkageTerms) (*contracts.Calculation, error) {
	effective, err := ApplyTerms(res.Ratio, terms, res.BasePeriod, res.CurrentPeriod)
	if err != nil {
		return nil, err
	}
	rent, err := ComputeAdjustedRent(baseRent, effective)
	if err != nil {
		return nil, err
	}

	return &contracts.Calculation{
		ID:             uuid.NewString(),
		Series:         res.Series,
		BasePeriod:     res.BasePeriod,
		CurrentPeriod:  res.CurrentPeriod,
		BaseValue:      res.BaseValue,
		CurrentValue:   res.CurrentValue,
		ChainFactor:    res.ChainFactor,
		BaseRent:       baseRent,
		RawRatio:       res.Ratio.Decimal().Round(6),
		EffectiveRatio: effective.Decimal().Round(6),
		AdjustedRent:   rent,
		Terms:          terms,
		Formula:        formula(res, baseRent, terms, effective, rent),
	}, nil
}

// Recompute re-derives the adjusted rent from a stored record
func Recompute(calc *contracts.Calculation) (int64, error) {
	if calc.BaseValue.IsZero() {
		return 0, &contracts.ZeroBaseError{Series: calc.Series, Period: calc.BasePeriod}
	}
	if !calc.ChainFactor.IsPositive() {
		return 0, contracts.Invalid("chain_factor", "must be positive, got %s", calc.ChainFactor)
	}

	// the stored chain factor belongs to the later of the two periods
	ratio := NewRatio(calc.CurrentValue.Mul(calc.ChainFactor), calc.BaseValue)
	if calc.CurrentPeriod.Before(calc.BasePeriod) {
		ratio = NewRatio(calc.CurrentValue, calc.BaseValue.Mul(calc.ChainFactor))
	}

	effective, err := ApplyTerms(ratio, calc.Terms, calc.BasePeriod, calc.CurrentPeriod)
	if err != nil {
		return 0, err
	}
	return ComputeAdjustedRent(calc.BaseRent, effective)
}

func formula(res *Resolution, baseRent decimal.Decimal, terms contracts.LinkageTerms, effective Ratio, rent int64) string {
	var b strings.Builder

	current := res.CurrentValue.String()
	if !res.ChainFactor.Equal(decimal.NewFromInt(1)) {
		current = fmt.Sprintf("%s × %s", res.CurrentValue, res.ChainFactor)
	}
	fmt.Fprintf(&b, "ratio = %s / %s = %s", current, res.BaseValue, res.Ratio)

	if terms.PartialPct.Valid && !terms.PartialPct.Decimal.Equal(hundred) {
		fmt.Fprintf(&b, "; partial %s%%", terms.PartialPct.Decimal)
	}
	if terms.AnnualCeilingPct.Valid && terms.AnnualCeilingPct.Decimal.IsPositive() {
		fmt.Fprintf(&b, "; ceiling %s%%/yr", terms.AnnualCeilingPct.Decimal)
	}
	if terms.BaseIsFloor {
		b.WriteString("; floor 1")
	}
	fmt.Fprintf(&b, "; rent = %s × %s = %d", baseRent, numeric.Display(effective.Decimal()), rent)
	return b.String()
}
