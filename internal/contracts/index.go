package contracts

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Point sources
const (
	SourceCBS    = "cbs"          // Central Bureau of Statistics feed
	SourceBOI    = "exchange-api" // Bank of Israel rates
	SourceManual = "manual"       // correction workflow
)

// IndexPoint is one published value of a series for a month.
// Points are append-only; several may exist per (series, period).
type IndexPoint struct {
	Series     SeriesType      `json:"series"`
	Period     Period          `json:"period"`
	Value      decimal.Decimal `json:"value"`
	Source     string          `json:"source"`
	Official   bool            `json:"official"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Validate checks a point before it is appended
func (p IndexPoint) Validate() error {
	if !p.Series.Valid() {
		return Invalid("series", "unknown series %q", p.Series)
	}
	if p.Period.IsZero() {
		return Invalid("period", "required")
	}
	if !p.Value.IsPositive() {
		return Invalid("value", "index value must be positive, got %s", p.Value)
	}
	return nil
}

// CanonicalPoint picks the one value that counts for a period:
// official beats unofficial, then latest RecordedAt, then latest appended.
func CanonicalPoint(points []IndexPoint) (IndexPoint, bool) {
	if len(points) == 0 {
		return IndexPoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Official != best.Official {
			if p.Official {
				best = p
			}
			continue
		}
		if !p.RecordedAt.Before(best.RecordedAt) {
			best = p
		}
	}
	return best, true
}

// IndexBase marks a rebasing: from BasePeriodStart the series is quoted
// against a new 100-point base. ChainFactor converts a value in this base
// into the value it would have under the immediately preceding base.
type IndexBase struct {
	Series          SeriesType      `json:"series"`
	BasePeriodStart Period          `json:"base_period_start"`
	BaseValue       decimal.Decimal `json:"base_value"`
	ChainFactor     decimal.Decimal `json:"chain_factor"`
	Description     string          `json:"description,omitempty"`
}

// SortBases orders bases ascending by BasePeriodStart in place
func SortBases(bases []IndexBase) {
	sort.SliceStable(bases, func(i, j int) bool {
		return bases[i].BasePeriodStart.Before(bases[j].BasePeriodStart)
	})
}

// ValidateBases checks the ordering invariant of a single series' bases
func ValidateBases(series SeriesType, bases []IndexBase) error {
	for i, b := range bases {
		if b.Series != series {
			return Invalid("bases", "base %s belongs to %s, not %s", b.BasePeriodStart, b.Series, series)
		}
		if !b.ChainFactor.IsPositive() {
			return Invalid("chain_factor", "%s base %s has non-positive chain factor %s", series, b.BasePeriodStart, b.ChainFactor)
		}
		if i > 0 && !bases[i-1].BasePeriodStart.Before(b.BasePeriodStart) {
			return Invalid("bases", "%s bases not strictly ascending at %s", series, b.BasePeriodStart)
		}
	}
	return nil
}
