package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/billingcycle"
	"github.com/subtally/subtally/internal/pkg/statistics"
	"github.com/subtally/subtally/internal/pkg/usercontext"
)

type subscribeRequest struct {
	TierID    uint   `json:"tier_id" validate:"required"`
	StartedAt string `json:"started_at" validate:"omitempty,datetime=2006-01-02"`
}

type trackRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=150"`
	Price     string `json:"price" validate:"required"`
	Period    string `json:"period" validate:"required,oneof=daily weekly monthly yearly"`
	StartedAt string `json:"started_at" validate:"omitempty,datetime=2006-01-02"`
}

// HandleSubscribe enrolls the caller in a catalog tier. Billing starts at
// the given date or today.
func HandleSubscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	startedAt, err := parseStartDate(req.StartedAt)
	if err != nil {
		return respondError(c, err)
	}

	factory := repository.GetGlobalFactory()
	tier, err := factory.GetProductRepository().GetTierByID(req.TierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(c, "tier not found")
		}
		return internalError(c, "could not load tier")
	}
	if !tier.Active {
		return badRequest(c, "tier is no longer offered")
	}

	userID := usercontext.GetUserID(c)
	sub := &models.Subscription{
		UserID:    userID,
		TierID:    &tier.ID,
		StartedAt: startedAt,
		Active:    true,
	}
	if err := factory.GetSubscriptionRepository().Create(sub); err != nil {
		return internalError(c, "could not create subscription")
	}
	statistics.InvalidateMonthlySpend(userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": sub})
}

// HandleTrack records a self-tracked subscription for a service outside the
// catalog. Price and period are frozen on the row.
func HandleTrack(c *fiber.Ctx) error {
	var req trackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return badRequest(c, "price must be a non-negative decimal")
	}
	if _, err := billingcycle.ParsePeriod(req.Period); err != nil {
		return badRequest(c, err.Error())
	}
	startedAt, err := parseStartDate(req.StartedAt)
	if err != nil {
		return respondError(c, err)
	}

	userID := usercontext.GetUserID(c)
	sub := &models.Subscription{
		UserID:         userID,
		TemplateName:   req.Name,
		TemplatePrice:  price,
		TemplatePeriod: req.Period,
		StartedAt:      startedAt,
		Active:         true,
	}
	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Create(sub); err != nil {
		return internalError(c, "could not create subscription")
	}
	statistics.InvalidateMonthlySpend(userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": sub})
}

// HandleSubscriptionList returns the caller's subscriptions, each with its
// billing snapshot computed against the current tier terms.
func HandleSubscriptionList(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	subRepo := repository.GetGlobalFactory().GetSubscriptionRepository()
	var (
		subs []models.Subscription
		err  error
	)
	if c.QueryBool("active", false) {
		subs, err = subRepo.GetActiveByUserID(userID)
	} else {
		subs, err = subRepo.GetByUserID(userID)
	}
	if err != nil {
		return internalError(c, "could not load subscriptions")
	}

	now := time.Now()
	entries := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		entries = append(entries, subscriptionEntry(&subs[i], now))
	}

	return c.JSON(fiber.Map{"subscriptions": entries})
}

// HandleSubscriptionGet returns one subscription with its snapshot.
func HandleSubscriptionGet(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid subscription id")
	}

	sub, err := loadOwnSubscription(c, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"subscription": subscriptionEntry(sub, time.Now())})
}

// HandleUnsubscribe soft-cancels a subscription. Cancelling twice is a
// conflict, not a no-op, so clients notice double submits.
func HandleUnsubscribe(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid subscription id")
	}

	sub, err := loadOwnSubscription(c, id)
	if err != nil {
		return respondError(c, err)
	}

	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Unsubscribe(sub.ID, time.Now()); err != nil {
		if errors.Is(err, models.ErrAlreadyUnsubscribed) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "conflict",
				"message": "subscription is already cancelled",
			})
		}
		return internalError(c, "could not cancel subscription")
	}
	statistics.InvalidateMonthlySpend(sub.UserID)

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDashboard aggregates the caller's active subscriptions into the
// monthly spend figure plus per-subscription billing snapshots.
func HandleDashboard(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	spend, err := statistics.GetMonthlySpend(userID)
	if err != nil {
		return internalError(c, "could not compute monthly spend")
	}

	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetActiveByUserID(userID)
	if err != nil {
		return internalError(c, "could not load subscriptions")
	}

	now := time.Now()
	entries := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		entries = append(entries, subscriptionEntry(&subs[i], now))
	}

	return c.JSON(fiber.Map{
		"active_subscriptions": spend.ActiveSubscriptions,
		"monthly_total":        spend.MonthlyTotal,
		"subscriptions":        entries,
	})
}

// subscriptionEntry renders one subscription with its computed snapshot.
// Rows with a malformed stored period carry a billing_error instead of a
// snapshot rather than poisoning the whole listing.
func subscriptionEntry(sub *models.Subscription, now time.Time) fiber.Map {
	entry := fiber.Map{
		"id":           sub.ID,
		"name":         sub.DisplayName(),
		"tier_id":      sub.TierID,
		"started_at":   sub.StartedAt.UTC().Format("2006-01-02"),
		"active":       sub.Active,
		"cancelled_at": formatTimePtr(sub.DeletedAt),
	}

	price, periodRaw := sub.BillingTerms()
	entry["price"] = price
	entry["period"] = periodRaw

	period, err := billingcycle.ParsePeriod(periodRaw)
	if err != nil {
		entry["billing_error"] = err.Error()
		return entry
	}
	snapshot, err := billingcycle.Compute(sub.StartedAt, price, period, sub.BillingEnd(now))
	if err != nil {
		entry["billing_error"] = err.Error()
		return entry
	}

	entry["elapsed_cycles"] = snapshot.ElapsedCycles
	entry["total_paid"] = snapshot.TotalPaid
	if sub.Active {
		entry["next_payment_date"] = snapshot.NextPaymentDate.UTC().Format("2006-01-02")
		entry["days_until_next_payment"] = snapshot.DaysUntilNextPayment
	}
	return entry
}

// loadOwnSubscription fetches a subscription and enforces that the caller
// owns it. A foreign id reads as not found so ids do not leak. Failures come
// back as fiber sentinel errors for respondError, never as a rendered
// response, so callers can rely on the err != nil guard.
func loadOwnSubscription(c *fiber.Ctx, id uint) (*models.Subscription, error) {
	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "subscription not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "could not load subscription")
	}
	if sub.UserID != usercontext.GetUserID(c) && !usercontext.IsAdmin(c) {
		return nil, fiber.NewError(fiber.StatusNotFound, "subscription not found")
	}
	return sub, nil
}

// parseStartDate parses an optional YYYY-MM-DD start date, defaulting to
// today. Future dates are allowed; billing simply has not started yet.
func parseStartDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		log.Debugf("rejecting start date %q: %v", raw, err)
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "started_at must be formatted YYYY-MM-DD")
	}
	return t, nil
}
