package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/cache"
	"github.com/subtally/subtally/internal/pkg/constants"
	"github.com/subtally/subtally/internal/pkg/database"
	"github.com/subtally/subtally/internal/pkg/env"
	"github.com/subtally/subtally/internal/pkg/jobqueue"
	"github.com/subtally/subtally/internal/pkg/mail"
	"github.com/subtally/subtally/internal/pkg/reminder"
	"github.com/subtally/subtally/internal/pkg/router"
)

func main() {
	app := NewApplication()

	// background jobs (logo mirroring, counter flushes)
	jobqueue.GetManager().Start()

	// reminder batch runs inside the server process
	subRepo := repository.GetGlobalFactory().GetSubscriptionRepository()
	manager := reminder.NewManager(reminder.NewScheduler(reminder.Config{
		Reader:   subRepo,
		Notifier: mail.NewReminderMailer(),
		Marker:   subRepo,
	}))
	manager.Start()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		manager.Stop()
		jobqueue.GetManager().Stop()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get(constants.MetricsRoute, monitor.New())

	// locally stored logo variants
	app.Static(constants.UploadsRoute, "./"+constants.UploadsPath, fiber.Static{
		CacheDuration: 10 * time.Second,
		MaxAge:        604800, // 7 days
	})

	// ROUTER
	router.InstallRouter(app)

	return app
}
