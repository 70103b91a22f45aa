package contracts

import (
	"github.com/shopspring/decimal"
)

// IndexMode selects which month's index applies to a payment
type IndexMode string

const (
	// IndexModeRespectOf: index of the payment month itself (madad b'gin)
	IndexModeRespectOf IndexMode = "respect_of"
	// IndexModeKnown: latest index published by the due date (madad yadua)
	IndexModeKnown IndexMode = "known"
)

// ParseIndexMode maps stored values; empty and legacy "base" mean respect-of
func ParseIndexMode(s string) (IndexMode, error) {
	switch s {
	case "", "respect_of", "base":
		return IndexModeRespectOf, nil
	case "known":
		return IndexModeKnown, nil
	default:
		return "", Invalid("index_mode", "unknown mode %q", s)
	}
}

// LinkageTerms are the contractual modifiers applied on top of the raw ratio
type LinkageTerms struct {
	// PartialPct links only part of the index move; null means 100%
	PartialPct decimal.NullDecimal `json:"partial_pct"`
	// BaseIsFloor: rent never drops below the base amount
	BaseIsFloor bool `json:"base_is_floor"`
	// AnnualCeilingPct caps growth at N% per elapsed year (prorated); null means no cap
	AnnualCeilingPct decimal.NullDecimal `json:"annual_ceiling_pct"`
}

// Validate rejects negative or out-of-range terms
func (t LinkageTerms) Validate() error {
	if t.PartialPct.Valid {
		if t.PartialPct.Decimal.IsNegative() || t.PartialPct.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return Invalid("partial_pct", "must be within [0, 100], got %s", t.PartialPct.Decimal)
		}
	}
	if t.AnnualCeilingPct.Valid && t.AnnualCeilingPct.Decimal.IsNegative() {
		return Invalid("annual_ceiling_pct", "must be >= 0, got %s", t.AnnualCeilingPct.Decimal)
	}
	return nil
}

// LinkageSpec ties a contract's rent to an index. BaseDate and BaseRentAmount
// are fixed for the life of the agreement; renegotiation creates a new spec.
type LinkageSpec struct {
	Series            SeriesType      `json:"series"`
	BaseDate          Period          `json:"base_date"`
	BaseRentAmount    decimal.Decimal `json:"base_rent_amount"`
	CurrentRentAmount decimal.Decimal `json:"current_rent_amount"` // derived
	Terms             LinkageTerms    `json:"terms"`
	Mode              IndexMode       `json:"mode"`
}

// Validate checks the fields the resolver depends on
func (l LinkageSpec) Validate() error {
	if !l.Series.Valid() {
		return Invalid("series", "unknown series %q", l.Series)
	}
	if l.BaseDate.IsZero() {
		return Invalid("base_date", "required")
	}
	if !l.BaseRentAmount.IsPositive() {
		return Invalid("base_rent_amount", "must be positive, got %s", l.BaseRentAmount)
	}
	return l.Terms.Validate()
}
