package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/jobqueue"
	"github.com/subtally/subtally/internal/pkg/statistics"
)

// HandleAdminStats returns platform-wide counters for the admin panel.
func HandleAdminStats(c *fiber.Ctx) error {
	factory := repository.GetGlobalFactory()

	users, err := factory.GetUserRepository().Count()
	if err != nil {
		return internalError(c, "could not count users")
	}
	vendors, err := factory.GetVendorRepository().Count()
	if err != nil {
		return internalError(c, "could not count vendors")
	}
	products, err := factory.GetProductRepository().Count()
	if err != nil {
		return internalError(c, "could not count products")
	}
	activeSubs, err := statistics.ActiveSubscriptionCount()
	if err != nil {
		return internalError(c, "could not count subscriptions")
	}

	jobStats, err := jobqueue.GetManager().GetQueue().GetJobStats(c.Context())
	if err != nil {
		return internalError(c, "could not read job stats")
	}

	return c.JSON(fiber.Map{
		"users":                users,
		"vendors":              vendors,
		"products":             products,
		"active_subscriptions": activeSubs,
		"jobs":                 jobStats,
	})
}
