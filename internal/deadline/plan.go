package deadline

import (
	"time"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// Kind distinguishes the decision deadline from the option-exercise deadline
type Kind string

const (
	KindDecision Kind = "decision"
	KindOption   Kind = "option"
)

// Deadline is one computed deadline plus how it was derived
type Deadline struct {
	Kind       Kind         `json:"kind"`
	Date       time.Time    `json:"date"`
	NoticeDays int          `json:"notice_days"`
	BufferDays int          `json:"buffer_days"`
	Source     NoticeSource `json:"source"`
	Window     Window       `json:"window"`
	DaysLeft   int          `json:"days_left"`
}

// Plan holds every deadline of one contract as of a given day
type Plan struct {
	EndDate  time.Time `json:"end_date"`
	Today    time.Time `json:"today"`
	Decision Deadline  `json:"decision"`
	Option   *Deadline `json:"option,omitempty"`
}

// Deadlines returns the decision deadline followed by the option deadline, if any
func (p *Plan) Deadlines() []Deadline {
	out := []Deadline{p.Decision}
	if p.Option != nil {
		out = append(out, *p.Option)
	}
	return out
}

// Planner computes plans against explicit global defaults
type Planner struct {
	defaults contracts.GlobalDefaults
}

// NewPlanner validates the defaults once
func NewPlanner(defaults contracts.GlobalDefaults) (*Planner, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	return &Planner{defaults: defaults}, nil
}

// Defaults returns the defaults in effect
func (p *Planner) Defaults() contracts.GlobalDefaults {
	return p.defaults
}

// Plan computes the decision deadline and, when the contract has an
// extension option, the option notice deadline.
func (p *Planner) Plan(policy contracts.NoticePolicy, today time.Time) (*Plan, error) {
	decision, err := p.deadline(KindDecision, policy.EndDate, policy.ContractNoticeDays, p.defaults.DefaultNoticeDays, today)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		EndDate:  Date(policy.EndDate),
		Today:    Date(today),
		Decision: decision,
	}
	if policy.HasOption {
		option, err := p.deadline(KindOption, policy.EndDate, policy.OptionNoticeDays, p.defaults.DefaultOptionNoticeDays, today)
		if err != nil {
			return nil, err
		}
		plan.Option = &option
	}
	return plan, nil
}

func (p *Planner) deadline(kind Kind, end time.Time, days *int, defaultDays int, today time.Time) (Deadline, error) {
	date, err := ComputeDecisionDeadline(end, days, defaultDays, p.defaults.SafetyBufferDays)
	if err != nil {
		return Deadline{}, err
	}
	notice, source := EffectiveNoticeDays(days, defaultDays)

	return Deadline{
		Kind:       kind,
		Date:       date,
		NoticeDays: notice,
		BufferDays: p.defaults.SafetyBufferDays,
		Source:     source,
		Window:     WindowFor(date, today, p.defaults.AlertLeadDays),
		DaysLeft:   DaysUntil(date, today),
	}, nil
}
