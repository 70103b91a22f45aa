package indexation

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

var (
	hundred = decimal.NewFromInt(100)
	// 100 × 365.25, the ceiling percentage is per average year
	ceilingYearDays = decimal.NewFromInt(36525)
)

// ApplyTerms turns the raw index ratio into the ratio the contract actually
// charges. Order: partial linkage, prorated annual ceiling, base floor.
// Every step stays an exact fraction.
func ApplyTerms(raw Ratio, terms contracts.LinkageTerms, basePeriod, currentPeriod contracts.Period) (Ratio, error) {
	if err := terms.Validate(); err != nil {
		return Ratio{}, err
	}
	r := raw

	// 1 + (r-1)·p/100 = (den·100 + (num-den)·p) / (den·100)
	if terms.PartialPct.Valid && !terms.PartialPct.Decimal.Equal(hundred) {
		p := terms.PartialPct.Decimal
		den := r.Denominator.Mul(hundred)
		num := den.Add(r.Numerator.Sub(r.Denominator).Mul(p))
		r = NewRatio(num, den)
	}

	if terms.AnnualCeilingPct.Valid && terms.AnnualCeilingPct.Decimal.IsPositive() {
		if max := CeilingRatio(terms.AnnualCeilingPct.Decimal, basePeriod, currentPeriod); r.Cmp(max) > 0 {
			r = max
		}
	}

	if terms.BaseIsFloor && r.Cmp(One()) < 0 {
		r = One()
	}
	return r, nil
}

// CeilingRatio is the largest ratio allowed by an annual cap of pct percent,
// prorated by calendar days elapsed between the two months over 365.25-day years.
func CeilingRatio(pct decimal.Decimal, basePeriod, currentPeriod contracts.Period) Ratio {
	days := int64(currentPeriod.Start().Sub(basePeriod.Start()).Hours() / 24)
	if days < 0 {
		days = 0
	}
	// 1 + pct/100 × days/365.25
	num := ceilingYearDays.Add(pct.Mul(decimal.NewFromInt(days)))
	return NewRatio(num, ceilingYearDays)
}
