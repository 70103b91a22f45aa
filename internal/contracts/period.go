package contracts

import (
	"fmt"
	"time"
)

// zeroPeriodText is what String() gives for an unset period
const zeroPeriodText = "0000-00"

// Period is a calendar month (YYYY-MM). Index values are published per month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod builds a normalised Period (month overflow rolls into the year)
func NewPeriod(year int, month time.Month) Period {
	return PeriodOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// PeriodOf returns the month containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod accepts "2006-01" or a full "2006-01-02" date (day is dropped)
func ParsePeriod(s string) (Period, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return PeriodOf(t), nil
		}
	}
	return Period{}, &InvalidInputError{Field: "period", Message: fmt.Sprintf("expected YYYY-MM, got %q", s)}
}

// MustParsePeriod is ParsePeriod for literals; panics on bad input
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String formats as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// IsZero reports whether the period is unset
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Start returns the first day of the month at UTC midnight
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts the period by n months (n may be negative)
func (p Period) AddMonths(n int) Period {
	return NewPeriod(p.Year, p.Month+time.Month(n))
}

// Compare returns -1, 0 or +1
func (p Period) Compare(o Period) int {
	a, b := p.index(), o.index()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether p is strictly earlier than o
func (p Period) Before(o Period) bool { return p.Compare(o) < 0 }

// After reports whether p is strictly later than o
func (p Period) After(o Period) bool { return p.Compare(o) > 0 }

// MonthsUntil returns the number of months from p to o (negative if o is earlier)
func (p Period) MonthsUntil(o Period) int {
	return o.index() - p.index()
}

// MonthsBetween lists every month from start through end inclusive
func MonthsBetween(start, end Period) []Period {
	if end.Before(start) {
		return nil
	}
	months := make([]Period, 0, start.MonthsUntil(end)+1)
	for p := start; !p.After(end); p = p.AddMonths(1) {
		months = append(months, p)
	}
	return months
}

func (p Period) index() int {
	return p.Year*12 + int(p.Month) - 1
}

// MarshalText implements encoding.TextMarshaler. An unset period encodes as ""
func (p Period) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return []byte{}, nil
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "" and "0000-00" decode
// to the zero period.
func (p *Period) UnmarshalText(text []byte) error {
	if s := string(text); s == "" || s == zeroPeriodText {
		*p = Period{}
		return nil
	}
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
