package deadline

import "time"

// Window is the derived position of today relative to a deadline.
// Never stored: it is recomputed whenever defaults or today change.
type Window string

const (
	WindowAway    Window = "more-than-notice-away"
	WindowInside  Window = "inside-notice-window"
	WindowOverdue Window = "overdue"
)

// WindowFor classifies today against deadline.
// Inside spans [deadline - leadDays, deadline]; after deadline is overdue.
func WindowFor(deadline, today time.Time, leadDays int) Window {
	days := DaysUntil(deadline, today)
	switch {
	case days < 0:
		return WindowOverdue
	case days <= leadDays:
		return WindowInside
	default:
		return WindowAway
	}
}

// NeedsAttention reports windows that should reach the notification layer
func (w Window) NeedsAttention() bool {
	return w == WindowInside || w == WindowOverdue
}
