// Package billingcycle holds the pure date/money arithmetic behind
// subscription cost tracking: elapsed cycle counts, totals paid, next payment
// due dates and the 28-day-equivalent normalization used by the dashboard.
// Everything here is deterministic and side-effect free; "now" is always an
// explicit argument, never read from a clock.
package billingcycle

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRange is returned when an evaluation instant precedes the
// subscription start in a context that assumes forward time. It is never
// silently corrected here; callers that aggregate "paid so far" clamp to
// zero themselves (Compute does exactly that).
var ErrInvalidRange = errors.New("evaluation instant precedes subscription start")

// Snapshot is the derived billing state of one subscription at one instant.
// It is computed on demand and never persisted.
type Snapshot struct {
	ElapsedCycles        int
	TotalPaid            decimal.Decimal
	NextPaymentDate      time.Time
	DaysUntilNextPayment int
}

// ElapsedCycles counts the complete billing cycles between startedAt and end.
// Whole-day truncation, never rounding: a partially elapsed cycle is not
// counted, so a subscriber is never charged for it.
func ElapsedCycles(startedAt, end time.Time, p Period) (int, error) {
	days, err := p.Days()
	if err != nil {
		return 0, err
	}
	if end.Before(startedAt) {
		return 0, ErrInvalidRange
	}
	return wholeDaysBetween(startedAt, end) / days, nil
}

// TotalPaid is cycles x pricePerCycle. No proration.
func TotalPaid(cycles int, pricePerCycle decimal.Decimal) decimal.Decimal {
	return pricePerCycle.Mul(decimal.NewFromInt(int64(cycles)))
}

// NextPaymentDate returns the due date of the first not-yet-elapsed cycle:
// startedAt plus (cycles+1) periods.
func NextPaymentDate(startedAt time.Time, cycles int, p Period) (time.Time, error) {
	days, err := p.Days()
	if err != nil {
		return time.Time{}, err
	}
	return startedAt.AddDate(0, 0, (cycles+1)*days), nil
}

// DaysUntil returns the signed whole-day distance from "from" to target.
// Both instants are bucketed to midnight UTC first so that intra-day clock
// drift can neither skip nor duplicate a reminder window. Positive means
// future, negative means overdue.
func DaysUntil(target, from time.Time) int {
	t := startOfDayUTC(target)
	f := startOfDayUTC(from)
	return int(t.Sub(f).Hours() / 24)
}

// MonthlyEquivalent normalizes a recurring price to its 28-day equivalent so
// that subscriptions on different periods can be summed into one figure. The
// yearly mapping is 28/365, an approximation used for dashboard aggregation,
// not accounting-accurate proration. Unknown periods fail with
// ErrUnsupportedPeriod instead of defaulting.
func MonthlyEquivalent(price decimal.Decimal, p Period) (decimal.Decimal, error) {
	days, err := p.Days()
	if err != nil {
		return decimal.Decimal{}, err
	}
	// Multiply before dividing: a precomputed 28/365 factor truncates at
	// decimal division precision and drags exact quotients off by 1e-16.
	return price.Mul(decimal.NewFromInt(daysMonthly)).Div(decimal.NewFromInt(int64(days))), nil
}

// Compute evaluates the full billing snapshot of one subscription at "now".
// A future-dated start is clamped to zero elapsed cycles here, because every
// caller of Compute is answering "what has been paid so far".
func Compute(startedAt time.Time, price decimal.Decimal, p Period, now time.Time) (Snapshot, error) {
	cycles, err := ElapsedCycles(startedAt, now, p)
	if err != nil {
		if !errors.Is(err, ErrInvalidRange) {
			return Snapshot{}, err
		}
		cycles = 0
	}

	next, err := NextPaymentDate(startedAt, cycles, p)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		ElapsedCycles:        cycles,
		TotalPaid:            TotalPaid(cycles, price),
		NextPaymentDate:      next,
		DaysUntilNextPayment: DaysUntil(next, now),
	}, nil
}

// wholeDaysBetween truncates to full days; start <= end is the caller's
// contract.
func wholeDaysBetween(start, end time.Time) int {
	return int(math.Floor(end.Sub(start).Hours() / 24))
}

func startOfDayUTC(t time.Time) time.Time {
	tt := t.UTC()
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC)
}
