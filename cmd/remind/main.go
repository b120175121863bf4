package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/database"
	"github.com/subtally/subtally/internal/pkg/env"
	"github.com/subtally/subtally/internal/pkg/mail"
	"github.com/subtally/subtally/internal/pkg/reminder"
)

// One-shot reminder batch, for cron setups that prefer an external trigger
// over the in-process manager.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	subRepo := repository.GetGlobalFactory().GetSubscriptionRepository()
	scheduler := reminder.NewScheduler(reminder.Config{
		Reader:   subRepo,
		Notifier: mail.NewReminderMailer(),
		Marker:   subRepo,
	})

	summary, err := scheduler.Run(ctx)
	if err != nil {
		log.Fatalf("reminder batch failed: %v", err)
	}

	fmt.Printf("reminder batch complete: %d week reminders, %d day reminders, %d failures\n",
		summary.WeekRemindersSent, summary.DayRemindersSent, len(summary.Failures))
	for _, f := range summary.Failures {
		fmt.Fprintf(os.Stderr, "  subscription %d: %v\n", f.SubscriptionID, f.Err)
	}
	if len(summary.Failures) > 0 {
		os.Exit(1)
	}
}
