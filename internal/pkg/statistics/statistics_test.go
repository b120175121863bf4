package statistics

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtally/subtally/app/models"
	"github.com/subtally/subtally/internal/pkg/billingcycle"
)

func templateSub(id uint, price string, period string) models.Subscription {
	return models.Subscription{
		ID:             id,
		TemplateName:   "self-tracked",
		TemplatePrice:  decimal.RequireFromString(price),
		TemplatePeriod: period,
		StartedAt:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Active:         true,
	}
}

func TestMonthlySpendSumsAcrossPeriods(t *testing.T) {
	subs := []models.Subscription{
		templateSub(1, "1.00", "daily"),    // 28.00 monthly equivalent
		templateSub(2, "2.50", "weekly"),   // 10.00
		templateSub(3, "9.99", "monthly"),  // 9.99
		templateSub(4, "365.00", "yearly"), // 28.00
	}

	spend, err := monthlySpendOf(42, subs)
	if err != nil {
		t.Fatalf("monthlySpendOf returned error: %v", err)
	}

	if spend.ActiveSubscriptions != 4 {
		t.Fatalf("ActiveSubscriptions = %d, want 4", spend.ActiveSubscriptions)
	}
	want := decimal.RequireFromString("75.99")
	if !spend.MonthlyTotal.Equal(want) {
		t.Fatalf("MonthlyTotal = %s, want %s", spend.MonthlyTotal, want)
	}
}

func TestMonthlySpendEmpty(t *testing.T) {
	spend, err := monthlySpendOf(1, nil)
	if err != nil {
		t.Fatalf("monthlySpendOf returned error: %v", err)
	}
	if !spend.MonthlyTotal.IsZero() || spend.ActiveSubscriptions != 0 {
		t.Fatalf("expected empty spend, got %+v", spend)
	}
}

func TestMonthlySpendRejectsUnknownPeriod(t *testing.T) {
	subs := []models.Subscription{templateSub(1, "10.00", "quarterly")}

	_, err := monthlySpendOf(1, subs)
	if !errors.Is(err, billingcycle.ErrUnsupportedPeriod) {
		t.Fatalf("expected ErrUnsupportedPeriod, got %v", err)
	}
}
