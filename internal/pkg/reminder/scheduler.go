// Package reminder implements the daily payment-reminder batch: scan every
// active subscription, work out how far away the next payment is and notify
// subscribers exactly seven days and one day before it falls due.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/subtally/subtally/internal/pkg/billingcycle"
)

// Window identifies which reminder offset fired.
type Window string

const (
	WindowWeek Window = "week"
	WindowDay  Window = "day"
)

// The fixed offsets before a due date at which a reminder fires.
const (
	WeekOutDays = 7
	DayOutDays  = 1
)

const (
	DefaultWorkerCount = 4
	DefaultItemTimeout = 10 * time.Second
)

// Item is one active subscription as seen by the batch: the billing inputs
// plus where and under which name to deliver the reminder.
type Item struct {
	ID             uint
	DisplayName    string
	ProductURL     string
	Contact        string
	StartedAt      time.Time
	Price          decimal.Decimal
	Period         billingcycle.Period
	LastRemindedAt *time.Time
}

// Reader supplies a single consistent snapshot of all active subscriptions.
type Reader interface {
	ListActiveSubscriptions() ([]Item, error)
}

// Notifier delivers one reminder. Failures are recorded per item by the
// scheduler and never retried here.
type Notifier interface {
	SendReminder(ctx context.Context, item Item, window Window, dueDate time.Time) error
}

// Marker persists the dedup guard. A subscription marked earlier on the same
// calendar day is skipped, so re-running the batch within one day cannot
// double-send.
type Marker interface {
	MarkReminded(id uint, at time.Time) error
}

// Failure records one subscription whose notification could not be sent.
type Failure struct {
	SubscriptionID uint
	Err            error
}

// Summary is the operator-visible result of one batch run.
type Summary struct {
	WeekRemindersSent int
	DayRemindersSent  int
	Failures          []Failure
}

// Config wires the scheduler's collaborators. Clock defaults to time.Now,
// Workers and ItemTimeout to the package defaults.
type Config struct {
	Reader      Reader
	Notifier    Notifier
	Marker      Marker
	Clock       func() time.Time
	Workers     int
	ItemTimeout time.Duration
}

// Scheduler runs one reminder batch per invocation.
type Scheduler struct {
	reader      Reader
	notifier    Notifier
	marker      Marker
	now         func() time.Time
	workers     int
	itemTimeout time.Duration
}

func NewScheduler(cfg Config) *Scheduler {
	s := &Scheduler{
		reader:      cfg.Reader,
		notifier:    cfg.Notifier,
		marker:      cfg.Marker,
		now:         cfg.Clock,
		workers:     cfg.Workers,
		itemTimeout: cfg.ItemTimeout,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkerCount
	}
	if s.itemTimeout <= 0 {
		s.itemTimeout = DefaultItemTimeout
	}
	return s
}

// Run reads the active-subscription snapshot once and fans out over a worker
// pool. Items are independent: a failed dispatch is recorded in the summary
// and never aborts the batch. Only a failed snapshot read fails the run as a
// whole. Cancelling ctx stops new items from starting; in-flight dispatches
// finish.
func (s *Scheduler) Run(ctx context.Context) (Summary, error) {
	items, err := s.reader.ListActiveSubscriptions()
	if err != nil {
		return Summary{}, fmt.Errorf("subscription snapshot read failed: %w", err)
	}

	now := s.now()

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)

	jobs := make(chan Item)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				window, due, ok := s.evaluate(item, now, &mu, &summary)
				if !ok {
					continue
				}
				s.dispatch(ctx, item, window, due, now, &mu, &summary)
			}
		}()
	}

feed:
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break feed
		case jobs <- item:
		}
	}
	close(jobs)
	wg.Wait()

	return summary, nil
}

// evaluate decides whether an item falls on a reminder window today.
func (s *Scheduler) evaluate(item Item, now time.Time, mu *sync.Mutex, summary *Summary) (Window, time.Time, bool) {
	cycles, err := billingcycle.ElapsedCycles(item.StartedAt, now, item.Period)
	if err != nil {
		// A future-dated start has no payment to remind about yet.
		if err == billingcycle.ErrInvalidRange {
			return "", time.Time{}, false
		}
		mu.Lock()
		summary.Failures = append(summary.Failures, Failure{SubscriptionID: item.ID, Err: err})
		mu.Unlock()
		return "", time.Time{}, false
	}

	due, err := billingcycle.NextPaymentDate(item.StartedAt, cycles, item.Period)
	if err != nil {
		mu.Lock()
		summary.Failures = append(summary.Failures, Failure{SubscriptionID: item.ID, Err: err})
		mu.Unlock()
		return "", time.Time{}, false
	}

	var window Window
	switch billingcycle.DaysUntil(due, now) {
	case WeekOutDays:
		window = WindowWeek
	case DayOutDays:
		window = WindowDay
	default:
		return "", time.Time{}, false
	}

	if item.LastRemindedAt != nil && sameDay(*item.LastRemindedAt, now) {
		log.Debugf("[Reminder] Subscription %d already reminded today, skipping", item.ID)
		return "", time.Time{}, false
	}

	return window, due, true
}

func (s *Scheduler) dispatch(ctx context.Context, item Item, window Window, due, now time.Time, mu *sync.Mutex, summary *Summary) {
	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	if err := s.notifier.SendReminder(itemCtx, item, window, due); err != nil {
		mu.Lock()
		summary.Failures = append(summary.Failures, Failure{SubscriptionID: item.ID, Err: err})
		mu.Unlock()
		return
	}

	if s.marker != nil {
		// Best effort: a lost marker can at worst repeat one reminder.
		if err := s.marker.MarkReminded(item.ID, now); err != nil {
			log.Warnf("[Reminder] Failed to mark subscription %d as reminded: %v", item.ID, err)
		}
	}

	mu.Lock()
	switch window {
	case WindowWeek:
		summary.WeekRemindersSent++
	case WindowDay:
		summary.DayRemindersSent++
	}
	mu.Unlock()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
