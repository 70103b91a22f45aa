package indexation

import (
	"time"

	"github.com/wonny/rentix/backend/internal/contracts"
)

// publicationDay is the day of month the statistics bureau publishes the
// previous month's index.
const publicationDay = 15

// IndexPeriodFor selects the index month that applies to a payment due on due.
//
//	respect_of: the payment month itself
//	known:      latest index published by the due date; on or after the 15th
//	            that is last month, before it the month before last
func IndexPeriodFor(mode contracts.IndexMode, due time.Time) contracts.Period {
	p := contracts.PeriodOf(due)
	if mode != contracts.IndexModeKnown {
		return p
	}
	if due.Day() >= publicationDay {
		return p.AddMonths(-1)
	}
	return p.AddMonths(-2)
}

// PublicationDate is when the index for p becomes known (15th of the next month)
func PublicationDate(p contracts.Period) time.Time {
	next := p.AddMonths(1)
	return time.Date(next.Year, next.Month, publicationDay, 0, 0, 0, 0, time.UTC)
}

// LatestPublished returns the newest period whose index is public at t
func LatestPublished(t time.Time) contracts.Period {
	return IndexPeriodFor(contracts.IndexModeKnown, t)
}
