// Package deadline derives notice and decision deadlines from contract terms.
//
// All arithmetic is on calendar dates (UTC midnight). A deadline already in
// the past is a valid result: it means the decision is overdue.
package deadline

import (
	"time"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// NoticeSource tells whether the notice length came from the contract or a default
type NoticeSource string

const (
	SourceContract NoticeSource = "contract"
	SourceDefault  NoticeSource = "default"
)

// EffectiveNoticeDays applies the "present and > 0, else default" policy.
// Zero is treated as unset: an extracted 0 would otherwise produce an
// instantly overdue alert. Negative contract values take the same default
// path rather than failing; only the global defaults are validated.
func EffectiveNoticeDays(contractDays *int, defaultDays int) (int, NoticeSource) {
	if contractDays != nil && *contractDays > 0 {
		return *contractDays, SourceContract
	}
	return defaultDays, SourceDefault
}

// ComputeDecisionDeadline returns endDate - (effective notice + buffer) days
func ComputeDecisionDeadline(endDate time.Time, contractNoticeDays *int, globalDefaultDays, safetyBufferDays int) (time.Time, error) {
	if endDate.IsZero() {
		return time.Time{}, contracts.Invalid("end_date", "required")
	}
	if globalDefaultDays < 1 {
		return time.Time{}, contracts.Invalid("default_notice_days", "must be >= 1, got %d", globalDefaultDays)
	}
	if safetyBufferDays < 1 {
		return time.Time{}, contracts.Invalid("safety_buffer_days", "must be >= 1, got %d", safetyBufferDays)
	}

	notice, _ := EffectiveNoticeDays(contractNoticeDays, globalDefaultDays)
	return Date(endDate).AddDate(0, 0, -(notice + safetyBufferDays)), nil
}

// Date truncates t to its calendar date at UTC midnight
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil counts calendar days from today to deadline (negative when past)
func DaysUntil(deadline, today time.Time) int {
	return int(Date(deadline).Sub(Date(today)).Hours() / 24)
}
