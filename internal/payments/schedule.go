// Package payments generates rent payment schedules and their indexed amounts.
package payments

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// MaxPayments caps a generated schedule (ten years of monthly rent)
const MaxPayments = 120

// Status of a scheduled payment
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Payment is one scheduled rent payment
type Payment struct {
	ContractID     string          `json:"contract_id,omitempty"`
	DueDate        time.Time       `json:"due_date"`
	Amount         decimal.Decimal `json:"amount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`

	// set by IndexSchedule; nil when not linked or not computable
	IndexedAmount *int64            `json:"indexed_amount,omitempty"`
	IndexPeriod   *contracts.Period `json:"index_period,omitempty"`
	CalculationID string            `json:"calculation_id,omitempty"`
	IndexError    string            `json:"index_error,omitempty"`
}

// ScheduleParams are the contract fields a schedule depends on
type ScheduleParams struct {
	ContractID string                     `json:"contract_id,omitempty"`
	StartDate  time.Time                  `json:"start_date"`
	EndDate    time.Time                  `json:"end_date"`
	BaseRent   decimal.Decimal            `json:"base_rent"`
	Currency   string                     `json:"currency"`
	Frequency  contracts.PaymentFrequency `json:"frequency"`
	PaymentDay int                        `json:"payment_day"`
	RentSteps  []contracts.RentStep       `json:"rent_steps,omitempty"`
}

// ParamsFromContract maps a stored contract to schedule params
func ParamsFromContract(c *contracts.Contract) ScheduleParams {
	p := ScheduleParams{
		ContractID: c.ID,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		Frequency:  c.Frequency,
		PaymentDay: c.PaymentDay,
		RentSteps:  c.RentSteps,
	}
	if c.Linkage != nil {
		p.BaseRent = c.Linkage.BaseRentAmount
	}
	return p
}

// GenerateSchedule lists due dates from start through end, one per
// frequency step. The payment day is clamped to the month's length
// (31 → 28/29 in February); the schedule stops after MaxPayments.
func GenerateSchedule(p ScheduleParams) ([]Payment, error) {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return nil, contracts.Invalid("dates", "start and end date are required")
	}
	if !p.BaseRent.IsPositive() {
		return nil, contracts.Invalid("base_rent", "must be positive, got %s", p.BaseRent)
	}
	if p.PaymentDay < 0 || p.PaymentDay > 31 {
		return nil, contracts.Invalid("payment_day", "must be within [1, 31], got %d", p.PaymentDay)
	}

	currency := p.Currency
	if currency == "" {
		currency = "ILS"
	}
	payDay := p.PaymentDay
	if payDay == 0 {
		payDay = 1
	}
	step := p.Frequency.Months()

	steps := sortedSteps(p.RentSteps)
	start := civil(p.StartDate)
	end := civil(p.EndDate)

	var out []Payment
	for i := 0; i < MaxPayments; i++ {
		// step from the first month each time; repeated AddDate would drift on the 31st
		month := time.Date(start.Year(), start.Month()+time.Month(i*step), 1, 0, 0, 0, 0, time.UTC)
		anchor := clampDay(month, start.Day())
		if anchor.After(end) {
			break
		}

		due := clampDay(month, payDay)
		amount := AmountAt(p.BaseRent, steps, due)
		out = append(out, Payment{
			ContractID:     p.ContractID,
			DueDate:        due,
			Amount:         amount,
			OriginalAmount: amount,
			Currency:       currency,
			Status:         StatusPending,
		})
	}
	return out, nil
}

// AmountAt returns the rent in force on due: the latest step starting on or
// before due, else the base rent. steps must be sorted ascending.
func AmountAt(baseRent decimal.Decimal, steps []contracts.RentStep, due time.Time) decimal.Decimal {
	amount := baseRent
	for _, s := range steps {
		if civil(s.StartDate).After(due) {
			break
		}
		amount = s.Amount
	}
	return amount
}

func sortedSteps(steps []contracts.RentStep) []contracts.RentStep {
	out := make([]contracts.RentStep, 0, len(steps))
	for _, s := range steps {
		if s.Amount.IsPositive() && !s.StartDate.IsZero() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func clampDay(month time.Time, day int) time.Time {
	last := time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
