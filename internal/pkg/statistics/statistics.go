// Package statistics aggregates per-user and instance-wide subscription
// figures for the dashboard. The expensive part, the monthly-equivalent
// normalization across heterogeneous billing periods, comes from the
// billingcycle engine; results are cached in redis with a short TTL.
package statistics

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/app/repository"
	"github.com/subtally/subtally/internal/pkg/billingcycle"
	"github.com/subtally/subtally/internal/pkg/cache"
)

const (
	CacheKeyMonthlySpend = "statistics:monthly_spend:%d" // per user ID
	CacheKeyActiveSubs   = "statistics:subscriptions:active"
	CacheExpiration      = 30 * time.Minute
)

// MonthlySpend is the aggregate "current monthly bill" of one user: every
// active subscription normalized to its 28-day equivalent and summed. An
// approximation for comparability, not accounting-accurate proration.
type MonthlySpend struct {
	UserID              uint            `json:"user_id"`
	ActiveSubscriptions int             `json:"active_subscriptions"`
	MonthlyTotal        decimal.Decimal `json:"monthly_total"`
}

// ComputeMonthlySpend aggregates a user's active subscriptions. Subscriptions
// carrying a non-canonical period fail the aggregation rather than being
// silently counted at face value.
func ComputeMonthlySpend(userID uint) (*MonthlySpend, error) {
	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetActiveByUserID(userID)
	if err != nil {
		return nil, err
	}
	return monthlySpendOf(userID, subs)
}

func monthlySpendOf(userID uint, subs []models.Subscription) (*MonthlySpend, error) {
	total := decimal.Zero
	for _, sub := range subs {
		price, periodRaw := sub.BillingTerms()
		period, err := billingcycle.ParsePeriod(periodRaw)
		if err != nil {
			return nil, fmt.Errorf("subscription %d: %w", sub.ID, err)
		}
		equivalent, err := billingcycle.MonthlyEquivalent(price, period)
		if err != nil {
			return nil, fmt.Errorf("subscription %d: %w", sub.ID, err)
		}
		total = total.Add(equivalent)
	}

	return &MonthlySpend{
		UserID:              userID,
		ActiveSubscriptions: len(subs),
		MonthlyTotal:        total.Round(2),
	}, nil
}

// GetMonthlySpend returns the cached aggregate, recomputing on a miss.
func GetMonthlySpend(userID uint) (*MonthlySpend, error) {
	key := fmt.Sprintf(CacheKeyMonthlySpend, userID)
	if cached, err := cache.Get(key); err == nil && cached != "" {
		var count int
		var totalRaw string
		if n, err := fmt.Sscanf(cached, "%d|%s", &count, &totalRaw); n == 2 && err == nil {
			if total, err := decimal.NewFromString(totalRaw); err == nil {
				return &MonthlySpend{UserID: userID, ActiveSubscriptions: count, MonthlyTotal: total}, nil
			}
		}
	}

	spend, err := ComputeMonthlySpend(userID)
	if err != nil {
		return nil, err
	}

	value := fmt.Sprintf("%d|%s", spend.ActiveSubscriptions, spend.MonthlyTotal.String())
	if err := cache.Set(key, value, CacheExpiration); err != nil {
		log.Warnf("[Statistics] Failed to cache monthly spend for user %d: %v", userID, err)
	}
	return spend, nil
}

// InvalidateMonthlySpend drops the cached aggregate after a subscription
// change.
func InvalidateMonthlySpend(userID uint) {
	key := fmt.Sprintf(CacheKeyMonthlySpend, userID)
	if err := cache.Delete(key); err != nil {
		log.Warnf("[Statistics] Failed to invalidate monthly spend for user %d: %v", userID, err)
	}
}

// ActiveSubscriptionCount returns the instance-wide active subscription
// count, cached.
func ActiveSubscriptionCount() (int64, error) {
	if cached, err := cache.Get(CacheKeyActiveSubs); err == nil && cached != "" {
		var count int64
		if n, err := fmt.Sscanf(cached, "%d", &count); n == 1 && err == nil {
			return count, nil
		}
	}

	count, err := repository.GetGlobalFactory().GetSubscriptionRepository().CountActive()
	if err != nil {
		return 0, err
	}
	if err := cache.Set(CacheKeyActiveSubs, fmt.Sprintf("%d", count), CacheExpiration); err != nil {
		log.Warnf("[Statistics] Failed to cache active subscription count: %v", err)
	}
	return count, nil
}
