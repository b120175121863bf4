package billingcycle

import (
	"errors"
	"fmt"
	"strings"
)

// Period is one of the four recurrence lengths a subscription can bill on.
// The set is closed: anything else must be rejected at parse time and never
// reach the cycle math.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// "monthly" is a fixed 28-day cycle, not a calendar month. That keeps every
// period an exact day count and the cycle math free of calendar edge cases.
const (
	daysDaily   = 1
	daysWeekly  = 7
	daysMonthly = 28
	daysYearly  = 365
)

// ErrUnsupportedPeriod is returned whenever a period outside the canonical
// set reaches the engine. Unknown periods are never coerced to a default.
var ErrUnsupportedPeriod = errors.New("unsupported billing period")

// ParsePeriod validates raw input against the closed period set.
func ParsePeriod(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriod, raw)
	}
}

// PeriodFromDays maps a canonical cycle length in days back to its period.
func PeriodFromDays(days int) (Period, error) {
	switch days {
	case daysDaily:
		return PeriodDaily, nil
	case daysWeekly:
		return PeriodWeekly, nil
	case daysMonthly:
		return PeriodMonthly, nil
	case daysYearly:
		return PeriodYearly, nil
	default:
		return "", fmt.Errorf("%w: %d days", ErrUnsupportedPeriod, days)
	}
}

// Days returns the canonical cycle length.
func (p Period) Days() (int, error) {
	switch p {
	case PeriodDaily:
		return daysDaily, nil
	case PeriodWeekly:
		return daysWeekly, nil
	case PeriodMonthly:
		return daysMonthly, nil
	case PeriodYearly:
		return daysYearly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPeriod, string(p))
	}
}

// Valid reports whether p is one of the four canonical periods.
func (p Period) Valid() bool {
	_, err := p.Days()
	return err == nil
}

func (p Period) String() string {
	return string(p)
}
