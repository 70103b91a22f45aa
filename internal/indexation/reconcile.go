package indexation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// ReconciliationInput describes a back-pay check over a range of months
type ReconciliationInput struct {
	Series     contracts.SeriesType   `json:"series"`
	BasePeriod contracts.Period       `json:"base_period"`
	Mode       contracts.IndexMode    `json:"mode"`
	Terms      contracts.LinkageTerms `json:"terms"`
	BaseRent   decimal.Decimal        `json:"base_rent"`

	PeriodStart contracts.Period `json:"period_start"`
	PeriodEnd   contracts.Period `json:"period_end"`
	// rent is re-indexed every N months (monthly, quarterly, semiannually, annually)
	UpdateFrequency contracts.PaymentFrequency `json:"update_frequency"`
	// due day used for known-index selection; 0 means after publication
	PaymentDay int `json:"payment_day"`

	// per-month base overrides (rent steps) keyed by YYYY-MM
	MonthlyBaseRent map[contracts.Period]decimal.Decimal `json:"monthly_base_rent,omitempty"`
	// actual payments keyed by month; when nil ActualPerMonth applies to all
	MonthlyActuals map[contracts.Period]decimal.Decimal `json:"monthly_actuals,omitempty"`
	ActualPerMonth decimal.Decimal                      `json:"actual_per_month"`
}

// ReconciliationLine is one month of the breakdown
type ReconciliationLine struct {
	Month          contracts.Period `json:"month"`
	IndexPeriod    contracts.Period `json:"index_period"`
	IndexValue     decimal.Decimal  `json:"index_value"`
	Ratio          decimal.Decimal  `json:"ratio"` // effective, 6dp
	ShouldHavePaid int64            `json:"should_have_paid"`
	ActuallyPaid   decimal.Decimal  `json:"actually_paid"`
	Difference     decimal.Decimal  `json:"difference"`
}

// ReconciliationResult totals the breakdown
type ReconciliationResult struct {
	Lines               []ReconciliationLine `json:"lines"`
	TotalMonths         int                  `json:"total_months"`
	TotalShouldHavePaid int64                `json:"total_should_have_paid"`
	TotalPaid           decimal.Decimal      `json:"total_paid"`
	TotalBackPayOwed    decimal.Decimal      `json:"total_back_pay_owed"`
	AverageUnderpayment decimal.Decimal      `json:"average_underpayment"`
	PercentageOwed      decimal.Decimal      `json:"percentage_owed"` // of total paid, 2dp
}

// Reconcile compares what should have been paid against actual payments.
// A month without a canonical index fails the whole run with NoDataError;
// no month is ever estimated from a neighbour.
func (r *Resolver) Reconcile(ctx context.Context, in ReconciliationInput) (*ReconciliationResult, error) {
	if err := validateReconciliation(in); err != nil {
		return nil, err
	}

	months := contracts.MonthsBetween(in.PeriodStart, in.PeriodEnd)
	step := in.UpdateFrequency.Months()
	day := in.PaymentDay
	if day == 0 {
		day = publicationDay
	}

	result := &ReconciliationResult{
		Lines:     make([]ReconciliationLine, 0, len(months)),
		TotalPaid: decimal.Zero,
	}
	totalOwed := decimal.Zero

	var (
		ratio      Ratio
		indexValue decimal.Decimal
		indexMonth contracts.Period
	)
	for i, month := range months {
		if i%step == 0 {
			indexMonth = IndexPeriodFor(in.Mode, dueDate(month, day))
			res, err := r.Resolve(ctx, in.Series, in.BasePeriod, indexMonth)
			if err != nil {
				return nil, err
			}
			ratio, err = ApplyTerms(res.Ratio, in.Terms, in.BasePeriod, indexMonth)
			if err != nil {
				return nil, err
			}
			indexValue = res.CurrentValue
		}

		base := in.BaseRent
		if override, ok := in.MonthlyBaseRent[month]; ok {
			base = override
		}
		should, err := ComputeAdjustedRent(base, ratio)
		if err != nil {
			return nil, err
		}

		paid := in.ActualPerMonth
		if in.MonthlyActuals != nil {
			paid = in.MonthlyActuals[month]
		}
		diff := decimal.NewFromInt(should).Sub(paid)

		result.Lines = append(result.Lines, ReconciliationLine{
			Month:          month,
			IndexPeriod:    indexMonth,
			IndexValue:     indexValue,
			Ratio:          ratio.Decimal().Round(6),
			ShouldHavePaid: should,
			ActuallyPaid:   paid,
			Difference:     diff,
		})
		result.TotalShouldHavePaid += should
		result.TotalPaid = result.TotalPaid.Add(paid)
		totalOwed = totalOwed.Add(diff)
	}

	result.TotalMonths = len(result.Lines)
	result.TotalBackPayOwed = totalOwed
	result.AverageUnderpayment = totalOwed.Div(decimal.NewFromInt(int64(result.TotalMonths))).Round(2)
	result.PercentageOwed = decimal.Zero
	if result.TotalPaid.IsPositive() {
		result.PercentageOwed = totalOwed.Mul(hundred).Div(result.TotalPaid).Round(2)
	}
	return result, nil
}

func validateReconciliation(in ReconciliationInput) error {
	if !in.Series.Valid() {
		return contracts.Invalid("series", "unknown series %q", in.Series)
	}
	if in.BasePeriod.IsZero() || in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() {
		return contracts.Invalid("period", "base, start and end period are required")
	}
	if in.PeriodEnd.Before(in.PeriodStart) {
		return contracts.Invalid("period_end", "%s is before %s", in.PeriodEnd, in.PeriodStart)
	}
	if !in.BaseRent.IsPositive() {
		return contracts.Invalid("base_rent", "must be positive, got %s", in.BaseRent)
	}
	if in.ActualPerMonth.IsNegative() {
		return contracts.Invalid("actual_per_month", "must be >= 0, got %s", in.ActualPerMonth)
	}
	if in.PaymentDay < 0 || in.PaymentDay > 31 {
		return contracts.Invalid("payment_day", "must be within [1, 31], got %d", in.PaymentDay)
	}
	return nil
}

// dueDate is the day-th of month, clamped to the month's length
func dueDate(month contracts.Period, day int) time.Time {
	last := month.AddMonths(1).Start().AddDate(0, 0, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(month.Year, month.Month, day, 0, 0, 0, 0, time.UTC)
}
