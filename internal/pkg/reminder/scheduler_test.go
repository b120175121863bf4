package reminder_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtally/subtally/internal/pkg/billingcycle"
	"github.com/subtally/subtally/internal/pkg/reminder"
)

type fakeReader struct {
	items []reminder.Item
	err   error
}

func (f *fakeReader) ListActiveSubscriptions() ([]reminder.Item, error) {
	return f.items, f.err
}

type sentReminder struct {
	id     uint
	window reminder.Window
	due    time.Time
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentReminder
	failID uint
}

func (f *fakeNotifier) SendReminder(_ context.Context, item reminder.Item, window reminder.Window, due time.Time) error {
	if f.failID != 0 && item.ID == f.failID {
		return errors.New("smtp unreachable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentReminder{id: item.ID, window: window, due: due})
	return nil
}

type fakeMarker struct {
	mu     sync.Mutex
	marked map[uint]time.Time
}

func (f *fakeMarker) MarkReminded(id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.marked == nil {
		f.marked = make(map[uint]time.Time)
	}
	f.marked[id] = at
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func item(id uint, startedAt time.Time, period billingcycle.Period) reminder.Item {
	return reminder.Item{
		ID:          id,
		DisplayName: "Streamly",
		Contact:     "user@example.com",
		StartedAt:   startedAt,
		Price:       decimal.RequireFromString("9.99"),
		Period:      period,
	}
}

func TestRunFiresWeekWindowExactly(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Seven days before the first 28-day due date.
	now := start.AddDate(0, 0, 28-7)

	notifier := &fakeNotifier{}
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{items: []reminder.Item{item(1, start, billingcycle.PeriodMonthly)}},
		Notifier: notifier,
		Marker:   &fakeMarker{},
		Clock:    fixedClock(now),
	})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.WeekRemindersSent)
	assert.Equal(t, 0, summary.DayRemindersSent)
	assert.Empty(t, summary.Failures)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, reminder.WindowWeek, notifier.sent[0].window)
	assert.Equal(t, start.AddDate(0, 0, 28), notifier.sent[0].due)
}

func TestRunFiresDayWindow(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 28-1)

	notifier := &fakeNotifier{}
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{items: []reminder.Item{item(1, start, billingcycle.PeriodMonthly)}},
		Notifier: notifier,
		Clock:    fixedClock(now),
	})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.WeekRemindersSent)
	assert.Equal(t, 1, summary.DayRemindersSent)
}

func TestRunOutsideWindowsSendsNothing(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, offset := range []int{0, 5, 10, 28 - 2} {
		notifier := &fakeNotifier{}
		s := reminder.NewScheduler(reminder.Config{
			Reader:   &fakeReader{items: []reminder.Item{item(1, start, billingcycle.PeriodMonthly)}},
			Notifier: notifier,
			Clock:    fixedClock(start.AddDate(0, 0, offset)),
		})

		summary, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Zerof(t, summary.WeekRemindersSent+summary.DayRemindersSent, "offset=%d", offset)
		assert.Empty(t, notifier.sent)
	}
}

func TestRunIsolatesPerItemFailures(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 28-7)

	// Three items on the same window; the second one's dispatch fails.
	notifier := &fakeNotifier{failID: 2}
	s := reminder.NewScheduler(reminder.Config{
		Reader: &fakeReader{items: []reminder.Item{
			item(1, start, billingcycle.PeriodMonthly),
			item(2, start, billingcycle.PeriodMonthly),
			item(3, start, billingcycle.PeriodMonthly),
		}},
		Notifier: notifier,
		Clock:    fixedClock(now),
	})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.WeekRemindersSent)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, uint(2), summary.Failures[0].SubscriptionID)
	assert.Error(t, summary.Failures[0].Err)
}

func TestRunSkipsAlreadyRemindedToday(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 28-7).Add(14 * time.Hour)
	earlier := now.Add(-6 * time.Hour)

	it := item(1, start, billingcycle.PeriodMonthly)
	it.LastRemindedAt = &earlier

	notifier := &fakeNotifier{}
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{items: []reminder.Item{it}},
		Notifier: notifier,
		Clock:    fixedClock(now),
	})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.WeekRemindersSent)
	assert.Empty(t, notifier.sent)
}

func TestRunMarksRemindedItems(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 28-7)

	marker := &fakeMarker{}
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{items: []reminder.Item{item(7, start, billingcycle.PeriodMonthly)}},
		Notifier: &fakeNotifier{},
		Marker:   marker,
		Clock:    fixedClock(now),
	})

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	at, ok := marker.marked[7]
	require.True(t, ok)
	assert.Equal(t, now, at)
}

func TestRunSkipsFutureDatedStart(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	notifier := &fakeNotifier{}
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{items: []reminder.Item{item(1, now.AddDate(0, 0, 30), billingcycle.PeriodMonthly)}},
		Notifier: notifier,
		Clock:    fixedClock(now),
	})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
	assert.Empty(t, summary.Failures)
}

func TestRunRecordsUnsupportedPeriodAsFailure(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	it := item(9, start, billingcycle.Period("fortnight"))
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{items: []reminder.Item{it}},
		Notifier: &fakeNotifier{},
		Clock:    fixedClock(start.AddDate(0, 0, 10)),
	})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, uint(9), summary.Failures[0].SubscriptionID)
	assert.ErrorIs(t, summary.Failures[0].Err, billingcycle.ErrUnsupportedPeriod)
}

func TestRunFailsWhenSnapshotReadFails(t *testing.T) {
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{err: errors.New("connection refused")},
		Notifier: &fakeNotifier{},
	})

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot read failed")
}

func TestRunStopsFeedingOnCancel(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	items := make([]reminder.Item, 0, 100)
	for i := uint(1); i <= 100; i++ {
		items = append(items, item(i, start, billingcycle.PeriodMonthly))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier := &fakeNotifier{}
	s := reminder.NewScheduler(reminder.Config{
		Reader:   &fakeReader{items: items},
		Notifier: notifier,
		Clock:    fixedClock(start.AddDate(0, 0, 28-7)),
		Workers:  1,
	})

	summary, err := s.Run(ctx)
	require.NoError(t, err)
	// Nothing was fed to the pool after cancellation.
	assert.Zero(t, summary.WeekRemindersSent)
}
