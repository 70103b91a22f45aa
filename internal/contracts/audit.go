package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calculation is the explainable record of one adjusted-rent computation.
// Re-running the resolver with these inputs must reproduce AdjustedRent.
// ⭐ SSOT: 감사 기록 (입력 + 결과 + 공식)
type Calculation struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id,omitempty"`

	Series        SeriesType      `json:"series"`
	BasePeriod    Period          `json:"base_period"`
	CurrentPeriod Period          `json:"current_period"`
	BaseValue     decimal.Decimal `json:"base_value"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	ChainFactor   decimal.Decimal `json:"chain_factor"` // product applied to the newer value
	BaseRent      decimal.Decimal `json:"base_rent"`

	RawRatio       decimal.Decimal `json:"raw_ratio"`       // display only, 6dp
	EffectiveRatio decimal.Decimal `json:"effective_ratio"` // after linkage terms, 6dp
	AdjustedRent   int64           `json:"adjusted_rent"`
	Terms          LinkageTerms    `json:"terms"`
	Formula        string          `json:"formula"`

	PolicyHash string    `json:"policy_hash,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeadlineAlert records a contract crossing into a notice window
type DeadlineAlert struct {
	ContractID string    `json:"contract_id"`
	Kind       string    `json:"kind"` // decision, option
	Deadline   time.Time `json:"deadline"`
	Window     string    `json:"window"`
	DaysLeft   int       `json:"days_left"`
	CreatedAt  time.Time `json:"created_at"`
}
