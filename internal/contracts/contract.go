package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus is the lifecycle state of a lease
type ContractStatus string

const (
	ContractActive     ContractStatus = "active"
	ContractExpired    ContractStatus = "expired"
	ContractTerminated ContractStatus = "terminated"
)

// PaymentFrequency is how often rent is due
type PaymentFrequency string

const (
	FrequencyMonthly      PaymentFrequency = "monthly"
	FrequencyQuarterly    PaymentFrequency = "quarterly"
	FrequencySemiannually PaymentFrequency = "semiannually"
	FrequencyAnnually     PaymentFrequency = "annually"
)

// Months returns the step between due dates; unknown values fall back to monthly
func (f PaymentFrequency) Months() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencySemiannually:
		return 6
	case FrequencyAnnually:
		return 12
	default:
		return 1
	}
}

// RentStep is a pre-agreed rent change starting at a date (e.g. option year)
type RentStep struct {
	StartDate time.Time       `json:"start_date"`
	Amount    decimal.Decimal `json:"amount"`
}

// Contract is a lease as stored by the host application.
// ⭐ SSOT: 엔진에 필요한 계약 필드만 보관
type Contract struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    time.Time        `json:"end_date"`
	PaymentDay int              `json:"payment_day"` // 1-31, clamped to month length
	Frequency  PaymentFrequency `json:"frequency"`
	RentSteps  []RentStep       `json:"rent_steps,omitempty"`
	Status     ContractStatus   `json:"status"`

	// nil when the rent is not index-linked
	Linkage *LinkageSpec `json:"linkage,omitempty"`
	Notice  NoticePolicy `json:"notice"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsLinked reports whether rent follows an index
func (c *Contract) IsLinked() bool {
	return c.Linkage != nil
}

// IsActive reports whether the contract is still running
func (c *Contract) IsActive() bool {
	return c.Status == "" || c.Status == ContractActive
}

// Validate checks the contract-level fields; linkage is validated separately
func (c *Contract) Validate() error {
	if c.ID == "" {
		return Invalid("id", "required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return Invalid("dates", "start and end date are required")
	}
	if c.EndDate.Before(c.StartDate) {
		return Invalid("end_date", "end date %s is before start date %s",
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	if c.PaymentDay < 0 || c.PaymentDay > 31 {
		return Invalid("payment_day", "must be within [1, 31], got %d", c.PaymentDay)
	}
	if c.Linkage != nil {
		return c.Linkage.Validate()
	}
	return nil
}
