package billingcycle_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtally/subtally/internal/pkg/billingcycle"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestElapsedCyclesTruncates(t *testing.T) {
	start := date(2024, time.January, 1)

	// A cycle only counts once fully elapsed; every day within the cycle
	// reports the same count.
	for _, p := range []billingcycle.Period{
		billingcycle.PeriodDaily,
		billingcycle.PeriodWeekly,
		billingcycle.PeriodMonthly,
		billingcycle.PeriodYearly,
	} {
		days, err := p.Days()
		require.NoError(t, err)

		for n := 0; n < 3; n++ {
			for _, k := range []int{0, 1, days - 1} {
				if k >= days {
					continue
				}
				end := start.AddDate(0, 0, n*days+k)
				got, err := billingcycle.ElapsedCycles(start, end, p)
				require.NoError(t, err)
				assert.Equalf(t, n, got, "period=%s n=%d k=%d", p, n, k)
			}

			end := start.AddDate(0, 0, (n+1)*days)
			got, err := billingcycle.ElapsedCycles(start, end, p)
			require.NoError(t, err)
			assert.Equal(t, n+1, got)
		}
	}
}

func TestElapsedCyclesPartialDayDoesNotCount(t *testing.T) {
	start := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 28).Add(-time.Minute)

	got, err := billingcycle.ElapsedCycles(start, end, billingcycle.PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestElapsedCyclesInvalidRange(t *testing.T) {
	start := date(2024, time.June, 1)
	_, err := billingcycle.ElapsedCycles(start, start.AddDate(0, 0, -1), billingcycle.PeriodMonthly)
	assert.ErrorIs(t, err, billingcycle.ErrInvalidRange)
}

func TestElapsedCyclesUnsupportedPeriod(t *testing.T) {
	start := date(2024, time.June, 1)
	_, err := billingcycle.ElapsedCycles(start, start.AddDate(0, 0, 30), billingcycle.Period("quarterly"))
	assert.ErrorIs(t, err, billingcycle.ErrUnsupportedPeriod)
}

func TestTotalPaidScalesLinearly(t *testing.T) {
	price := decimal.RequireFromString("9.99")

	assert.True(t, billingcycle.TotalPaid(0, price).IsZero())

	prev := decimal.Zero
	for cycles := 1; cycles <= 5; cycles++ {
		got := billingcycle.TotalPaid(cycles, price)
		assert.True(t, got.GreaterThan(prev))
		assert.True(t, got.Sub(prev).Equal(price))
		prev = got
	}
}

func TestNextPaymentDateIsOnePeriodPastElapsed(t *testing.T) {
	start := date(2024, time.January, 1)

	for _, p := range []billingcycle.Period{
		billingcycle.PeriodDaily,
		billingcycle.PeriodWeekly,
		billingcycle.PeriodMonthly,
		billingcycle.PeriodYearly,
	} {
		days, err := p.Days()
		require.NoError(t, err)

		for cycles := 0; cycles < 3; cycles++ {
			next, err := billingcycle.NextPaymentDate(start, cycles, p)
			require.NoError(t, err)
			assert.Equal(t, start.AddDate(0, 0, (cycles+1)*days), next)
		}
	}
}

func TestDaysUntilBucketsToMidnight(t *testing.T) {
	due := time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC)

	// Late in the evening it is still "7 days out" by calendar days.
	from := time.Date(2024, time.March, 18, 23, 45, 0, 0, time.UTC)
	assert.Equal(t, 7, billingcycle.DaysUntil(due, from))

	assert.Equal(t, 1, billingcycle.DaysUntil(due, date(2024, time.March, 24)))
	assert.Equal(t, 0, billingcycle.DaysUntil(due, due))
	assert.Equal(t, -3, billingcycle.DaysUntil(due, date(2024, time.March, 28)))
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		period billingcycle.Period
		price  string
		want   string
	}{
		{period: billingcycle.PeriodDaily, price: "1", want: "28"},
		{period: billingcycle.PeriodWeekly, price: "2.50", want: "10"},
		{period: billingcycle.PeriodMonthly, price: "9.99", want: "9.99"},
	}

	for _, tt := range tests {
		got, err := billingcycle.MonthlyEquivalent(decimal.RequireFromString(tt.price), tt.period)
		require.NoError(t, err)
		assert.Truef(t, got.Equal(decimal.RequireFromString(tt.want)), "period=%s got=%s", tt.period, got)
	}

	// Yearly uses the 28/365 approximation.
	got, err := billingcycle.MonthlyEquivalent(decimal.NewFromInt(365), billingcycle.PeriodYearly)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(28)))
}

func TestMonthlyEquivalentRejectsUnknownPeriod(t *testing.T) {
	// The engine must never fall back to a x1 factor for unknown periods.
	_, err := billingcycle.MonthlyEquivalent(decimal.NewFromInt(10), billingcycle.Period("13-day"))
	assert.ErrorIs(t, err, billingcycle.ErrUnsupportedPeriod)
}

func TestComputeScenario(t *testing.T) {
	// Subscription from 2024-01-01 at 9.99 per 28-day cycle, evaluated on
	// 2024-03-15: two full cycles elapsed, next due 2024-03-25, ten days out.
	snap, err := billingcycle.Compute(
		date(2024, time.January, 1),
		decimal.RequireFromString("9.99"),
		billingcycle.PeriodMonthly,
		date(2024, time.March, 15),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.ElapsedCycles)
	assert.True(t, snap.TotalPaid.Equal(decimal.RequireFromString("19.98")))
	assert.Equal(t, date(2024, time.March, 25), snap.NextPaymentDate)
	assert.Equal(t, 10, snap.DaysUntilNextPayment)
}

func TestComputeClampsFutureStart(t *testing.T) {
	now := date(2024, time.June, 1)
	start := now.AddDate(0, 0, 10)

	snap, err := billingcycle.Compute(start, decimal.NewFromInt(5), billingcycle.PeriodWeekly, now)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.ElapsedCycles)
	assert.True(t, snap.TotalPaid.IsZero())
	assert.Equal(t, start.AddDate(0, 0, 7), snap.NextPaymentDate)
}

func TestComputeUnsupportedPeriod(t *testing.T) {
	_, err := billingcycle.Compute(date(2024, time.January, 1), decimal.NewFromInt(5), billingcycle.Period("fortnight"), date(2024, time.February, 1))
	assert.ErrorIs(t, err, billingcycle.ErrUnsupportedPeriod)
}
