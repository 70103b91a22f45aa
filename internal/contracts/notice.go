package contracts

import "time"

// NoticePolicy is the per-contract notice data extracted from the agreement.
// A nil or zero day count means "unset" and falls back to GlobalDefaults.
type NoticePolicy struct {
	ContractNoticeDays *int      `json:"contract_notice_days"`
	OptionNoticeDays   *int      `json:"option_notice_days"`
	EndDate            time.Time `json:"end_date"`
	HasOption          bool      `json:"has_option"`
}

// GlobalDefaults are user/system level settings passed explicitly into each call
type GlobalDefaults struct {
	DefaultNoticeDays       int `json:"default_notice_days" yaml:"default_notice_days"`
	DefaultOptionNoticeDays int `json:"default_option_notice_days" yaml:"default_option_notice_days"`
	SafetyBufferDays        int `json:"safety_buffer_days" yaml:"safety_buffer_days"`
	AlertLeadDays           int `json:"alert_lead_days" yaml:"alert_lead_days"`
}

// Validate enforces positive defaults (the fallback must itself be usable)
func (g GlobalDefaults) Validate() error {
	if g.DefaultNoticeDays < 1 {
		return Invalid("default_notice_days", "must be >= 1, got %d", g.DefaultNoticeDays)
	}
	if g.DefaultOptionNoticeDays < 1 {
		return Invalid("default_option_notice_days", "must be >= 1, got %d", g.DefaultOptionNoticeDays)
	}
	if g.SafetyBufferDays < 1 {
		return Invalid("safety_buffer_days", "must be >= 1, got %d", g.SafetyBufferDays)
	}
	if g.AlertLeadDays < 0 {
		return Invalid("alert_lead_days", "must be >= 0, got %d", g.AlertLeadDays)
	}
	return nil
}

// Days is a helper for building optional day counts in literals
func Days(n int) *int {
	return &n
}
