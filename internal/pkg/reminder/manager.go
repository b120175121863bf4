package reminder

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/subtally/subtally/internal/pkg/env"
)

// Manager drives the scheduler on a fixed interval (once per day unless
// overridden) and owns its lifecycle.
type Manager struct {
	scheduler *Scheduler
	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

func NewManager(scheduler *Scheduler) *Manager {
	return &Manager{
		scheduler: scheduler,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the reminder loop in the background.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be
	// restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true

	interval := 24 * time.Hour
	if raw := env.GetEnv("REMINDER_INTERVAL_HOURS", ""); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			interval = time.Duration(hours) * time.Hour
		}
	}

	m.ticker = time.NewTicker(interval)
	m.wg.Add(1)
	go m.loop()

	log.Infof("[Reminder Manager] Started (interval=%s)", interval)
}

// Stop halts the loop and waits for an in-flight run to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Reminder Manager] Stopping...")
	if m.ticker != nil {
		m.ticker.Stop()
	}
	close(m.stopCh)
	m.running = false
	m.wg.Wait()
	log.Info("[Reminder Manager] Stopped")
}

func (m *Manager) loop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.ticker.C:
			m.runOnce()
		}
	}
}

func (m *Manager) runOnce() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Let a pending Stop interrupt the batch between items.
	done := make(chan struct{})
	go func() {
		select {
		case <-m.stopCh:
			cancel()
		case <-done:
		}
	}()

	summary, err := m.scheduler.Run(ctx)
	close(done)
	if err != nil {
		log.Errorf("[Reminder Manager] Batch run failed: %v", err)
		return
	}

	log.Infof("[Reminder Manager] Batch done: %d week reminders, %d day reminders, %d failures",
		summary.WeekRemindersSent, summary.DayRemindersSent, len(summary.Failures))
	for _, f := range summary.Failures {
		log.Warnf("[Reminder Manager] Subscription %d: %v", f.SubscriptionID, f.Err)
	}
}
